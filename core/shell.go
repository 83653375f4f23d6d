package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
	"golang.org/x/sys/unix"

	"github.com/jmedhanie/protosh/core/config"
	"github.com/jmedhanie/protosh/core/logger"
	"github.com/jmedhanie/protosh/core/shell"
)

// Shell is one interactive interpreter session: a readline loop that
// records every line to history and hands it to the dispatcher.
type Shell struct {
	cfg      *config.Configuration
	readline *readline.Instance
	log      *logger.SessionLogger

	builtins map[string]Builtin
	history  *History
	launcher *Launcher

	cwd string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// ShellIO describes the streams and terminal capabilities a Shell runs
// against.
type ShellIO struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal and Width override terminal detection when the session
	// carries its own PTY information (SSH). Leave nil for local runs;
	// readline then probes the real descriptors.
	IsTerminal func() bool
	Width      func() int
}

// NewShell builds a Shell over the given streams. slog may be nil to
// discard audit events.
func NewShell(cfg *config.Configuration, sio ShellIO, slog *logger.SessionLogger) (*Shell, error) {
	rlConfig := &readline.Config{
		Stdin:  readline.NewCancelableStdin(sio.Stdin),
		Stdout: sio.Stdout,
		Stderr: sio.Stderr,
	}
	if sio.IsTerminal != nil {
		rlConfig.FuncIsTerminal = sio.IsTerminal
	}
	if sio.Width != nil {
		rlConfig.FuncGetWidth = sio.Width
	}

	if err := rlConfig.Init(); err != nil {
		return nil, err
	}
	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	s := &Shell{
		cfg:      cfg,
		readline: rl,
		log:      slog,
		history:  NewHistory(cfg.HistoryMaxItems),
		cwd:      cwd,
		stdin:    sio.Stdin,
		stdout:   sio.Stdout,
		stderr:   sio.Stderr,
	}

	// Each shell owns a copy of the table so tests can register probes
	// without touching process-wide state.
	s.builtins = make(map[string]Builtin, len(AllBuiltins))
	for name, builtin := range AllBuiltins {
		s.builtins[name] = builtin
	}

	var tty *os.File
	if f, ok := sio.Stdin.(*os.File); ok {
		tty = f
	}
	s.launcher = NewLauncher(tty, s.Getwd)
	s.launcher.OnStartError = func(argv []string, err error) {
		s.log.Record(&logger.LaunchError{Command: argv, Error: err.Error()})
	}

	return s, nil
}

// Run drives the interpreter until end of input or a Stop signal and
// reports the process exit status, which is zero on every orderly
// path.
func (s *Shell) Run() int {
	defer s.readline.Close()

	if s.cfg.Motd != "" {
		fmt.Fprintln(s.stdout, s.cfg.Motd)
	}

	for {
		s.readline.SetPrompt(s.Prompt())
		line, err := s.readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue // ^C at the prompt abandons the line.

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		case strings.TrimSpace(line) == "":
			continue
		}

		s.history.Append(line)
		if s.Eval(line) == Stop {
			return 0
		}
	}
}

// Eval evaluates one already-recorded input line and reports whether
// the loop should keep going. Lines with pipes run through the
// pipeline executor, whose stage outcomes never stop the loop;
// everything else is dispatched directly and the builtin's own signal
// decides.
func (s *Shell) Eval(line string) Signal {
	if strings.ContainsRune(line, '|') {
		graph, err := shell.Parse(line)
		if err != nil {
			fmt.Fprintf(s.stderr, "protosh: %v\n", err)
			s.log.Record(&logger.InvalidInvocation{Input: line, Error: err.Error()})
			return Continue
		}
		s.RunPipeline(graph, nil, s.stdin, s.stdout, s.stderr)
		graph.Cleanup()
		return Continue
	}

	argv, err := shell.Split(line)
	if err != nil {
		fmt.Fprintf(s.stderr, "protosh: %v\n", err)
		s.log.Record(&logger.InvalidInvocation{Input: line, Error: err.Error()})
		return Continue
	}

	return s.Dispatch(ExecContext{
		Argv:   argv,
		Stdin:  s.stdin,
		Stdout: s.stdout,
		Stderr: s.stderr,
	})
}

// Prompt renders the configured prompt. The sequences \u, \h, \w and
// \$ expand the way interactive shells expand them; the default
// prompt carries none.
func (s *Shell) Prompt() string {
	prompt := s.cfg.Prompt
	if prompt == "" {
		prompt = config.DefaultPrompt
	}
	if !strings.ContainsRune(prompt, '\\') {
		return prompt
	}

	prompt = strings.ReplaceAll(prompt, `\u`, os.Getenv("USER"))

	host, _ := os.Hostname()
	prompt = strings.ReplaceAll(prompt, `\h`, host)

	pwd := s.Getwd()
	if home := os.Getenv("HOME"); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Geteuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

// Getwd reports the shell's working directory.
func (s *Shell) Getwd() string {
	return s.cwd
}

// Chdir moves the shell's working directory. Relative paths resolve
// against the current directory; launched processes start in the
// result.
func (s *Shell) Chdir(dir string) error {
	path := dir
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cwd, path)
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: dir, Err: unix.ENOTDIR}
	}
	s.cwd = path
	return nil
}

// Interrupt forwards an interrupt to whatever the shell is currently
// running.
func (s *Shell) Interrupt() {
	s.launcher.Interrupt()
}
