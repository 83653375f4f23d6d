package core

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/jmedhanie/protosh/core/shell"
)

// ReplayContext links a replayed pipeline back to the invocation that
// requested it: the invoking command, the graph it belonged to, and
// the line being replayed. Cleanup code running inside the new
// pipeline reaches the invoking resources through this value rather
// than through any shared state, so nested replays cannot trample each
// other's bookkeeping. Cmd and Graph are nil when the replay was
// requested outside a pipeline.
type ReplayContext struct {
	Cmd   *shell.Command
	Graph *shell.Pipeline
	Line  string
}

// RunPipeline executes every stage of p, each stage's stdout feeding
// the next stage's stdin. The first stage reads stdin; the last writes
// stdout; all share stderr. Stages run concurrently and the call
// returns only once every one of them has finished. Builtin stages
// re-enter the dispatcher in-process, so the whole builtin table
// (history included) is reachable from inside a pipeline; a stage's
// stop signal never escapes the pipeline. replay rides along on stage
// contexts when the pipeline is a history replay.
func (s *Shell) RunPipeline(p *shell.Pipeline, replay *ReplayContext, stdin io.Reader, stdout, stderr io.Writer) {
	var group errgroup.Group

	in := stdin
	last := len(p.Commands) - 1
	for i, cmd := range p.Commands {
		stage := ExecContext{
			Argv:   cmd.Argv,
			Cmd:    cmd,
			Graph:  p,
			Replay: replay,
			Stdin:  in,
			Stdout: stdout,
			Stderr: stderr,
		}

		readEnd, _ := in.(*io.PipeReader)

		var writeEnd *io.PipeWriter
		if i != last {
			pr, pw := io.Pipe()
			p.Track(pr)
			p.Track(pw)
			stage.Stdout = pw
			writeEnd = pw
			in = pr
		}

		group.Go(func() error {
			if writeEnd != nil {
				// Downstream sees EOF the moment this stage is done.
				defer writeEnd.Close()
			}
			if readEnd != nil {
				// A stage that exits without draining its input must
				// not leave the upstream stage blocked mid-write.
				defer readEnd.Close()
			}
			s.Dispatch(stage)
			return nil
		})
	}

	// Stages report their own failures on stderr; nothing propagates.
	_ = group.Wait()
}
