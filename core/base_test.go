package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/jmedhanie/protosh/core/config"
	"github.com/jmedhanie/protosh/core/logger"
)

// newTestShell builds a Shell over in-memory streams, wired the same
// way NewShell wires one but without the line editor.
func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	s := &Shell{
		cfg:     &config.Configuration{HistoryMaxItems: DefaultHistoryMaxItems},
		history: NewHistory(DefaultHistoryMaxItems),
		cwd:     "/",
		stdin:   strings.NewReader(""),
		stdout:  stdout,
		stderr:  stderr,
	}
	s.builtins = make(map[string]Builtin, len(AllBuiltins))
	for name, builtin := range AllBuiltins {
		s.builtins[name] = builtin
	}
	s.launcher = NewLauncher(nil, s.Getwd)
	s.launcher.OnStartError = func(argv []string, err error) {
		s.log.Record(&logger.LaunchError{Command: argv, Error: err.Error()})
	}
	return s, stdout, stderr
}

// registerProbes installs two observation builtins: emit prints its
// arguments one per line, upper copies stdin to stdout uppercased.
// They stand in for external programs so dispatch and pipeline tests
// never spawn real processes.
func registerProbes(s *Shell) {
	s.builtins["emit"] = BuiltinFunc(func(s *Shell, ctx ExecContext) Signal {
		for _, arg := range ctx.Argv[1:] {
			fmt.Fprintln(ctx.Stdout, arg)
		}
		return Continue
	})
	s.builtins["upper"] = BuiltinFunc(func(s *Shell, ctx ExecContext) Signal {
		data, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return Continue
		}
		fmt.Fprint(ctx.Stdout, strings.ToUpper(string(data)))
		return Continue
	})
}

// recordingLogger returns a session logger that keeps every entry in
// memory, plus an accessor for the entries recorded so far.
func recordingLogger() (*logger.SessionLogger, func() []logger.LogEntry) {
	var mu sync.Mutex
	var entries []logger.LogEntry
	log := logger.New(func(le *logger.LogEntry) error {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, *le)
		return nil
	})
	snapshot := func() []logger.LogEntry {
		mu.Lock()
		defer mu.Unlock()
		return append([]logger.LogEntry(nil), entries...)
	}
	return log.Session("test-session"), snapshot
}

func testCtx(argv []string, stdout, stderr io.Writer) ExecContext {
	return ExecContext{
		Argv:   argv,
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
	}
}
