package core

import (
	"io"

	"github.com/jmedhanie/protosh/core/logger"
	"github.com/jmedhanie/protosh/core/shell"
)

// Signal tells the interpreter loop whether to keep reading input.
type Signal int

const (
	// Stop ends the interpreter loop.
	Stop Signal = iota
	// Continue prompts for the next line.
	Continue
)

// ExecContext carries one command invocation: the tokenized argv plus
// the streams the command should use. When the command runs as a
// pipeline stage, Cmd and Graph identify the stage and its enclosing
// pipeline, and Replay links back to an in-flight history replay; all
// three are nil for a plain top-level invocation.
type ExecContext struct {
	Argv   []string
	Cmd    *shell.Command
	Graph  *shell.Pipeline
	Replay *ReplayContext

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Builtin is a command implemented inside the interpreter itself.
type Builtin interface {
	Main(s *Shell, ctx ExecContext) Signal
}

// BuiltinFunc adapts a plain function to the Builtin interface.
type BuiltinFunc func(s *Shell, ctx ExecContext) Signal

// Main implements Builtin.
func (f BuiltinFunc) Main(s *Shell, ctx ExecContext) Signal {
	return f(s, ctx)
}

// AllBuiltins is the interpreter's builtin table. A name in this table
// always shadows an external program of the same name: the dispatcher
// consults it before attempting any launch.
var AllBuiltins = map[string]Builtin{
	"cd":      BuiltinFunc(cdMain),
	"exit":    BuiltinFunc(exitMain),
	"help":    BuiltinFunc(helpMain),
	"history": BuiltinFunc(historyMain),
}

// Dispatch resolves and runs one tokenized command: builtins from the
// shell's table first, everything else through the process launcher.
// An empty argv is a no-op.
func (s *Shell) Dispatch(ctx ExecContext) Signal {
	if len(ctx.Argv) == 0 {
		return Continue
	}
	s.log.Record(&logger.RunCommand{Command: ctx.Argv})
	if builtin, ok := s.builtins[ctx.Argv[0]]; ok {
		return builtin.Main(s, ctx)
	}
	return s.launcher.Run(ctx.Argv, ctx.Stdin, ctx.Stdout, ctx.Stderr)
}
