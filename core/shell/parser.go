// Package shell parses interpreter input lines into executable pipelines.
package shell

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/anmitsu/go-shlex"
)

// Command is a single pipeline stage: a program or builtin name plus its
// arguments.
type Command struct {
	Argv []string
}

// Pipeline is the parsed form of one input line. Stages run left to
// right with each stage's stdout feeding the next stage's stdin.
type Pipeline struct {
	Commands []*Command

	mu      sync.Mutex
	closers []io.Closer
}

// Split tokenizes a single command into an argument vector.
func Split(line string) ([]string, error) {
	return shlex.Split(line, true)
}

// Parse turns a raw input line into a Pipeline. Any text tokenizable by
// Split is accepted, piped or not; an empty stage ("a |", "| b") is a
// syntax error.
func Parse(line string) (*Pipeline, error) {
	pipeline := &Pipeline{}
	for _, segment := range strings.Split(line, "|") {
		argv, err := Split(segment)
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("syntax error near unexpected token %q", "|")
		}
		pipeline.Commands = append(pipeline.Commands, &Command{Argv: argv})
	}
	return pipeline, nil
}

// Track registers a resource for Cleanup to release. The executor uses
// it for pipe ends that outlive an individual stage.
func (p *Pipeline) Track(closer io.Closer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closers = append(p.closers, closer)
}

// Cleanup releases every tracked resource. Calling it again after a
// successful execution is a no-op.
func (p *Pipeline) Cleanup() {
	p.mu.Lock()
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	for _, closer := range closers {
		closer.Close()
	}
}
