package command

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg    Config
		expErr string
	}{
		"empty config": {
			cfg: Config{},
		},
		"full config": {
			cfg: Config{
				TickInterval: "20ms",
				LogLevel:     "debug",
				Storage:      StorageConfig{Backend: StorageSQLite, Path: "dream.db"},
				Journal:      JournalConfig{Dir: "journal"},
				Nats:         NatsConfig{Enabled: true, Port: -1, StartTimeout: "5s"},
				Websocket:    WebsocketConfig{Addr: ":8080", Path: "/dream"},
				Listeners:    []ListenerConfig{{Protocol: ListenerTypeTelnet, Port: 4000}},
			},
		},
		"bad tick interval": {
			cfg:    Config{TickInterval: "soon"},
			expErr: "parsing tick_interval",
		},
		"tick interval too long": {
			cfg:    Config{TickInterval: "2s"},
			expErr: "between 1ms and 1s",
		},
		"bad log level": {
			cfg:    Config{LogLevel: "loud"},
			expErr: "parsing log_level",
		},
		"negative max consoles": {
			cfg:    Config{MaxConsoles: -1},
			expErr: "max_consoles",
		},
		"listener without port": {
			cfg:    Config{Listeners: []ListenerConfig{{Protocol: ListenerTypeTelnet}}},
			expErr: "listener 0: port must be set",
		},
		"host key on telnet": {
			cfg:    Config{Listeners: []ListenerConfig{{Protocol: ListenerTypeTelnet, Port: 4000, HostKeyPath: "key"}}},
			expErr: "host_key_path only applies to ssh",
		},
		"sqlite without path": {
			cfg:    Config{Storage: StorageConfig{Backend: StorageSQLite}},
			expErr: "path is required for the sqlite backend",
		},
		"unknown storage backend": {
			cfg:    Config{Storage: StorageConfig{Backend: "tape"}},
			expErr: "unknown backend",
		},
		"relative websocket path": {
			cfg:    Config{Websocket: WebsocketConfig{Addr: ":8080", Path: "ws"}},
			expErr: "path must start with /",
		},
		"nats port out of range": {
			cfg:    Config{Nats: NatsConfig{Port: 70000}},
			expErr: "out of range",
		},
		"nats bad start timeout": {
			cfg:    Config{Nats: NatsConfig{StartTimeout: "later"}},
			expErr: "parsing start_timeout",
		},
		"missing scenes path": {
			cfg:    Config{Scenes: ScenesConfig{Path: "/does/not/exist", Hub: "hub"}},
			expErr: "scenes: invalid path",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestConfig_Accessors(t *testing.T) {
	cfg := Config{TickInterval: "20ms", LogLevel: "warn"}
	testutil.AssertEqual(t, "tick interval", cfg.tickInterval(), 20*time.Millisecond)
	testutil.AssertEqual(t, "log level", cfg.logLevel(), slog.LevelWarn)

	empty := Config{}
	testutil.AssertEqual(t, "default tick interval", empty.tickInterval(), time.Duration(0))
	testutil.AssertEqual(t, "default log level", empty.logLevel(), slog.LevelInfo)
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("DREAM_LOG_LEVEL", "debug")
	t.Setenv("DREAM_STORAGE_BACKEND", "file")
	t.Setenv("DREAM_STORAGE_PATH", "records.json")

	cfg := Config{LogLevel: "info", Storage: StorageConfig{Backend: StorageMemory}}
	err := cfg.applyEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "log level", cfg.LogLevel, "debug")
	testutil.AssertEqual(t, "backend", cfg.Storage.Backend, StorageFile)
	testutil.AssertEqual(t, "path", cfg.Storage.Path, "records.json")
}

func TestListenerConfig_Unmarshal(t *testing.T) {
	tests := map[string]struct {
		raw      string
		expProto ListenerType
		expErr   string
	}{
		"telnet": {
			raw:      `{"protocol":"telnet","port":4000}`,
			expProto: ListenerTypeTelnet,
		},
		"ssh": {
			raw:      `{"protocol":"ssh","port":4022}`,
			expProto: ListenerTypeSSH,
		},
		"unknown": {
			raw:    `{"protocol":"gopher","port":70}`,
			expErr: "unknown listener type",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var lc ListenerConfig
			err := json.Unmarshal([]byte(tt.raw), &lc)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "protocol", lc.Protocol, tt.expProto)
		})
	}
}

func TestListenerConfig_Addr(t *testing.T) {
	lc := ListenerConfig{Host: "127.0.0.1", Port: 4000}
	testutil.AssertEqual(t, "addr", lc.addr(), "127.0.0.1:4000")

	lc = ListenerConfig{Port: 4000}
	testutil.AssertEqual(t, "any host", lc.addr(), ":4000")
}

func TestBuildWorkers(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Backend: StorageMemory},
		Journal: JournalConfig{Dir: t.TempDir()},
		Listeners: []ListenerConfig{
			{Protocol: ListenerTypeTelnet, Host: "127.0.0.1", Port: 4000},
		},
	}

	workers, err := BuildWorkers(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"driver", "storage", "journal", "listeners"} {
		_, ok := workers[name]
		testutil.AssertEqual(t, name+" present", ok, true)
	}
	_, ok := workers["nats"]
	testutil.AssertEqual(t, "nats absent", ok, false)
}

func TestBuildWorkers_BadConfig(t *testing.T) {
	_, err := BuildWorkers("not a config")
	testutil.AssertErrorContains(t, err, "unable to cast config")
}
