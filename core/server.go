package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/juju/ratelimit"
	gossh "golang.org/x/crypto/ssh"

	"github.com/jmedhanie/protosh/core/config"
	"github.com/jmedhanie/protosh/core/logger"
	"github.com/jmedhanie/protosh/core/ttylog"
)

// Server hosts interpreter sessions over SSH. Every session gets its
// own Shell, a transcript in the session log directory, and a shared
// audit log.
type Server struct {
	cfg       *config.Configuration
	log       *logger.Logger
	errLog    *log.Logger
	sshServer *ssh.Server
}

// NewServer builds a Server from an initialized configuration
// directory. Audit events go to auditLog; operational problems go to
// errLog.
func NewServer(cfg *config.Configuration, auditLog *logger.Logger, errLog *log.Logger) (*Server, error) {
	keyPem, err := cfg.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	hostKey, err := gossh.ParsePrivateKey(keyPem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}

	server := &Server{
		cfg:    cfg,
		log:    auditLog,
		errLog: errLog,
	}

	server.sshServer = &ssh.Server{
		Addr:    cfg.SSHAddr(),
		Version: cfg.SSHBanner,
		Handler: func(s ssh.Session) {
			server.handleSession(s)
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			ok := false
			for _, allowed := range cfg.GetPasswords(ctx.User()) {
				if subtle.ConstantTimeCompare([]byte(password), []byte(allowed)) == 1 {
					ok = true
				}
			}

			result := logger.ResultFailure
			if ok {
				result = logger.ResultSuccess
			}
			server.log.Session(ctx.SessionID()).Record(&logger.LoginAttempt{
				Username:   ctx.User(),
				Password:   password,
				RemoteAddr: fmt.Sprintf("%s", ctx.RemoteAddr()),
				Result:     result,
			})

			return ok
		},
	}
	server.sshServer.AddHostKey(hostKey)

	return server, nil
}

func (server *Server) handleSession(sess ssh.Session) {
	slog := server.log.Session(sess.Context().SessionID())

	ptyInfo, winch, isPty := sess.Pty()
	width := int64(80)
	if isPty && ptyInfo.Window.Width > 0 {
		width = int64(ptyInfo.Window.Width)
	}

	host, _ := os.Hostname()
	slog.Record(&logger.SessionStart{
		User:       sess.User(),
		RemoteAddr: fmt.Sprintf("%s", sess.RemoteAddr()),
		Host:       host,
		Term:       ptyInfo.Term,
		IsPty:      isPty,
	})
	defer slog.Record(&logger.SessionEnd{})

	// Watch for window changes. The channel closes with the session.
	if isPty {
		go func() {
			for window := range winch {
				atomic.StoreInt64(&width, int64(window.Width))
				slog.Record(&logger.TerminalUpdate{
					Term:   ptyInfo.Term,
					Width:  window.Width,
					Height: window.Height,
					IsPty:  isPty,
				})
			}
		}()
	}

	// Record the terminal interactions. A failure to create the
	// transcript shouldn't kill the session, so fall back to a sink
	// that drops everything.
	sink := ttylog.LogSink(func(*ttylog.Entry) error { return nil })
	name := fmt.Sprintf("%d.%s", time.Now().UnixMicro(), ttylog.AsciicastFileExt)
	if logFd, err := server.cfg.CreateSessionLog(name); err != nil {
		server.errLog.Printf("could not create session log %s: %v", name, err)
	} else {
		defer logFd.Close()
		sink = ttylog.NewAsciicastLogSink(logFd)
	}

	var sessionOut io.Writer = sess
	if limit := server.cfg.SessionRateLimit; limit > 0 {
		bucket := ratelimit.NewBucketWithRate(float64(limit), limit)
		sessionOut = ratelimit.Writer(sess, bucket)
	}

	recorder := ttylog.NewRecorder(sess, sessionOut, sess.Stderr(), sink)
	defer recorder.Close()

	shell, err := NewShell(server.cfg, ShellIO{
		Stdin:      recorder.Stdin(),
		Stdout:     recorder.Stdout(),
		Stderr:     recorder.Stderr(),
		IsTerminal: func() bool { return isPty },
		Width:      func() int { return int(atomic.LoadInt64(&width)) },
	}, slog)
	if err != nil {
		server.errLog.Printf("could not start session: %v", err)
		sess.Exit(1)
		return
	}

	sess.Exit(shell.Run())
}

// ListenAndServe accepts connections until the server shuts down.
func (server *Server) ListenAndServe() error {
	server.errLog.Printf("starting SSH server on %s", server.sshServer.Addr)
	return server.sshServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (server *Server) Shutdown(ctx context.Context) error {
	return server.sshServer.Shutdown(ctx)
}
