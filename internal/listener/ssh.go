package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

const sshHandshakeTimeout = 10 * time.Second

// SshListener serves the console over ssh. Anyone may connect; the
// console is meant for trusted networks.
type SshListener struct {
	addr    string
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(addr string, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		addr:    addr,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth:  true,
		ServerVersion: "SSH-2.0-dream-console",
	}
	config.AddHostKey(l.hostKey)

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "addr", ln.Addr())

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancelConns()
		wg.Wait()
	}()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if errors.Is(err, net.ErrClosed) && ctx.Err() != nil {
			return nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serve(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) serve(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer func() { _ = conn.Close() }()

	// A client that never finishes the handshake would otherwise hold the
	// goroutine forever.
	_ = conn.SetDeadline(time.Now().Add(sshHandshakeTimeout))
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.DebugContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	_ = conn.SetDeadline(time.Time{})
	defer func() { _ = sshConn.Close() }()

	log := slog.With("remote", conn.RemoteAddr(), "user", sshConn.User())
	log.InfoContext(ctx, "ssh connection established")

	go func() {
		<-ctx.Done()
		_ = sshConn.Close()
	}()
	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			log.ErrorContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		select {
		case shell := <-awaitShell(requests):
			if shell {
				l.cm.AcceptConnection(ctx, newLineConn(ch))
			}
		case <-ctx.Done():
		}
		_ = ch.Close()
	}
}

// awaitShell answers channel requests and reports whether the client
// asked for a shell before closing the channel. Clients hold their input
// until the shell reply arrives. PTYs are refused so the client keeps
// local echo and line editing.
func awaitShell(requests <-chan *ssh.Request) <-chan bool {
	ready := make(chan bool, 1)
	go func() {
		shell := false
		for req := range requests {
			ok := req.Type == "shell" && !shell
			if req.WantReply {
				_ = req.Reply(ok, nil)
			}
			if ok {
				shell = true
				ready <- true
			}
		}
		if !shell {
			ready <- false
		}
	}()
	return ready
}
