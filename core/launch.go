package core

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sys/unix"
)

// Launcher starts external programs in the foreground and keeps enough
// bookkeeping to forward interrupts to them.
//
// Every child runs in its own process group. When the interpreter owns
// a terminal, the child's group holds the terminal's foreground slot
// for the duration of the run so keyboard signals reach the child, not
// the interpreter.
type Launcher struct {
	mu     sync.Mutex
	active map[int]struct{} // process groups with a running child

	tty     *os.File      // controlling terminal, nil without one
	workdir func() string // working directory for children

	// OnStartError, when set, observes every launch that failed before
	// the child ran (lookup failures, permission errors).
	OnStartError func(argv []string, err error)
}

// NewLauncher builds a Launcher. tty may be nil; workdir may be nil to
// inherit the interpreter's own directory.
func NewLauncher(tty *os.File, workdir func() string) *Launcher {
	return &Launcher{
		active:  make(map[int]struct{}),
		tty:     tty,
		workdir: workdir,
	}
}

// Run starts argv[0] with the given streams and blocks until the child
// exits or dies from a signal; a child that merely stops keeps the run
// alive. The child's exit status never terminates the interpreter
// loop: Run always reports Continue. Start failures are reported on
// stderr.
func (l *Launcher) Run(argv []string, stdin io.Reader, stdout, stderr io.Writer) Signal {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if l.workdir != nil {
		cmd.Dir = l.workdir()
	}
	cmd.SysProcAttr = &unix.SysProcAttr{
		Setpgid: true,
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(stderr, "protosh: %v\n", err)
		if l.OnStartError != nil {
			l.OnStartError(argv, err)
		}
		return Continue
	}

	pgid, err := unix.Getpgid(cmd.Process.Pid)
	if err != nil {
		pgid = cmd.Process.Pid
	}
	l.track(pgid)
	l.setForeground(pgid)

	err = cmd.Wait()

	l.setForeground(unix.Getpgrp())
	l.untrack(pgid)

	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(stderr, "protosh: %v\n", err)
		}
	}
	return Continue
}

// Interrupt delivers SIGINT to every process group with a running
// child. With nothing running it is a no-op, which is what lets the
// interpreter itself survive ^C.
func (l *Launcher) Interrupt() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for pgid := range l.active {
		_ = unix.Kill(-pgid, unix.SIGINT)
	}
}

// setForeground hands the terminal's foreground slot to pgid. Errors
// are ignored: stdin may not be a terminal at all (pipes, tests,
// network sessions) and the run works fine without the handoff.
func (l *Launcher) setForeground(pgid int) {
	if l.tty == nil {
		return
	}
	_ = unix.IoctlSetPointerInt(int(l.tty.Fd()), unix.TIOCSPGRP, pgid)
}

func (l *Launcher) track(pgid int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active[pgid] = struct{}{}
}

func (l *Launcher) untrack(pgid int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, pgid)
}
