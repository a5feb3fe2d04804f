package listener

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/pixil98/go-testutil"
	"golang.org/x/crypto/ssh"
)

type bufferConn struct {
	in  io.Reader
	out bytes.Buffer
}

func (b *bufferConn) Read(p []byte) (int, error)  { return b.in.Read(p) }
func (b *bufferConn) Write(p []byte) (int, error) { return b.out.Write(p) }

func TestLineConn(t *testing.T) {
	tests := map[string]struct {
		in       io.Reader
		write    string
		expRead  string
		expWrite string
	}{
		"telnet line endings": {
			in:       strings.NewReader("status\r\n"),
			write:    "a\nb\n",
			expRead:  "status\n",
			expWrite: "a\r\nb\r\n",
		},
		"bare carriage return": {
			in:      strings.NewReader("quit\r"),
			expRead: "quit\n",
		},
		"carriage return with nul": {
			in:      strings.NewReader("mood\r\x00status\r\x00"),
			expRead: "mood\nstatus\n",
		},
		"pair split across reads": {
			in:      iotest.OneByteReader(strings.NewReader("a\r\nb\r\n")),
			expRead: "a\nb\n",
		},
		"existing crlf is kept": {
			in:       strings.NewReader(""),
			write:    "one\r\ntwo\n",
			expWrite: "one\r\ntwo\r\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			conn := &bufferConn{in: tt.in}
			rw := newLineConn(conn)

			got, err := io.ReadAll(rw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "read", string(got), tt.expRead)

			written, err := rw.Write([]byte(tt.write))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "reported length", written, len(tt.write))
			testutil.AssertEqual(t, "write", conn.out.String(), tt.expWrite)
		})
	}
}

type blockingRunner struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRunner) RunSession(ctx context.Context, conn io.ReadWriter) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestConnectionManager_Limit(t *testing.T) {
	runner := &blockingRunner{entered: make(chan struct{}), release: make(chan struct{})}
	cm := NewConnectionManager(runner, WithConnectionLimit(1))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cm.AcceptConnection(context.Background(), &bufferConn{in: strings.NewReader("")})
	}()
	<-runner.entered
	testutil.AssertEqual(t, "active", cm.Active(), 1)

	rejected := &bufferConn{in: strings.NewReader("")}
	cm.AcceptConnection(context.Background(), rejected)
	testutil.AssertEqual(t, "rejected", strings.Contains(rejected.out.String(), "crowded"), true)

	close(runner.release)
	wg.Wait()
	testutil.AssertEqual(t, "drained", cm.Active(), 0)
}

func TestAwaitShell(t *testing.T) {
	tests := map[string]struct {
		requests []string
		exp      bool
	}{
		"shell after pty": {
			requests: []string{"pty-req", "env", "shell"},
			exp:      true,
		},
		"exec only": {
			requests: []string{"exec"},
			exp:      false,
		},
		"no requests": {
			exp: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			in := make(chan *ssh.Request, len(tt.requests))
			for _, r := range tt.requests {
				in <- &ssh.Request{Type: r}
			}
			close(in)

			testutil.AssertEqual(t, "shell", <-awaitShell(in), tt.exp)
		})
	}
}
