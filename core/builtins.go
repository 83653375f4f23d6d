package core

import (
	"fmt"
	"sort"
)

// cdMain changes the shell's working directory to its first operand.
func cdMain(s *Shell, ctx ExecContext) Signal {
	if len(ctx.Argv) < 2 {
		fmt.Fprintf(ctx.Stderr, "protosh: expected argument to %q\n", "cd")
		return Continue
	}
	if err := s.Chdir(ctx.Argv[1]); err != nil {
		fmt.Fprintf(ctx.Stderr, "protosh: %v\n", err)
	}
	return Continue
}

// helpMain prints the banner and the builtin table.
func helpMain(s *Shell, ctx ExecContext) Signal {
	var names []string
	for name := range s.builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(ctx.Stdout, "Jonathan Medhanie's protosh")
	fmt.Fprintln(ctx.Stdout, "Type program names and arguments, and hit enter!")
	fmt.Fprintln(ctx.Stdout, "The following are built in:")
	for _, name := range names {
		fmt.Fprintf(ctx.Stdout, "  %s\n", name)
	}
	fmt.Fprintln(ctx.Stdout, "Use the man command for information on other programs.")
	return Continue
}

// exitMain ends the interpreter loop. Arguments are ignored.
func exitMain(s *Shell, ctx ExecContext) Signal {
	return Stop
}
