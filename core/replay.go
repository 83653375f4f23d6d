package core

import (
	"fmt"

	"github.com/pborman/getopt/v2"

	"github.com/jmedhanie/protosh/core/logger"
	"github.com/jmedhanie/protosh/core/shell"
)

// historyMain implements the history builtin: list the store, clear it
// with -c, or replay a stored line by index.
//
// Both the clear and a successful replay report Stop, ending the
// interpreter loop the same way exit does. This is deliberate; tests
// pin it.
func historyMain(s *Shell, ctx ExecContext) Signal {
	extra := ctx.Argv[1:]
	switch len(extra) {
	case 0:
		s.history.Each(func(i int, line string) {
			fmt.Fprintf(ctx.Stdout, "%d %s\n", i, line)
		})
		return Continue

	case 1:
		opts := getopt.New()
		clearFlag := opts.Bool('c', "clear the history list")
		if err := opts.Getopt(ctx.Argv, nil); err == nil && *clearFlag {
			s.history.Clear()
			s.log.Record(&logger.HistoryCleared{})
			return Stop
		}
		return s.replay(ctx, extra[0])

	default:
		// Unhandled forms are a silent no-op.
		return Continue
	}
}

// replay re-parses and re-executes the stored line addressed by arg.
func (s *Shell) replay(ctx ExecContext, arg string) Signal {
	offset, ok := parseOffset(arg)
	if !ok {
		fmt.Fprintln(ctx.Stderr, "error: cannot convert to number")
		return Continue
	}

	line, ok := s.history.At(offset)
	if !ok {
		fmt.Fprintln(ctx.Stderr, "error: offset > number of items")
		return Continue
	}

	graph, err := shell.Parse(line)
	if err != nil {
		fmt.Fprintf(ctx.Stderr, "protosh: %v\n", err)
		return Continue
	}

	// The frame carries the invoking command and graph down through the
	// executor so cleanup on the replayed side can reach them.
	frame := &ReplayContext{
		Cmd:   ctx.Cmd,
		Graph: ctx.Graph,
		Line:  line,
	}

	s.log.Record(&logger.HistoryReplay{Offset: offset, Line: line})
	s.RunPipeline(graph, frame, ctx.Stdin, ctx.Stdout, ctx.Stderr)
	graph.Cleanup()
	return Stop
}

// parseOffset mirrors strtol: an optional sign followed by decimal
// digits, with trailing junk ignored. ok is false only when the parse
// makes no progress at all.
func parseOffset(arg string) (offset int, ok bool) {
	i := 0
	negative := false
	if i < len(arg) && (arg[i] == '+' || arg[i] == '-') {
		negative = arg[i] == '-'
		i++
	}

	start := i
	for i < len(arg) && arg[i] >= '0' && arg[i] <= '9' {
		offset = offset*10 + int(arg[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	if negative {
		offset = -offset
	}
	return offset, true
}
