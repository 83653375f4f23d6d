package core

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmedhanie/protosh/core/config"
)

func TestShellEvalEmptyLine(t *testing.T) {
	s, stdout, stderr := newTestShell(t)

	got := s.Eval("")

	assert.Equal(t, Continue, got)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestShellEvalSplitError(t *testing.T) {
	s, stdout, stderr := newTestShell(t)
	log, entries := recordingLogger()
	s.log = log

	got := s.Eval(`emit "unterminated`)

	assert.Equal(t, Continue, got)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "protosh: ")

	invalid := 0
	for _, entry := range entries() {
		if entry.InvalidInvocation != nil {
			invalid++
		}
	}
	assert.Equal(t, 1, invalid)
}

func TestShellEvalLaunchErrorAudit(t *testing.T) {
	s, stdout, stderr := newTestShell(t)
	log, entries := recordingLogger()
	s.log = log

	got := s.Eval("protosh-no-such-program")

	assert.Equal(t, Continue, got)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "protosh: ")

	launchErrors := 0
	for _, entry := range entries() {
		if entry.LaunchError != nil {
			launchErrors++
			assert.Equal(t, []string{"protosh-no-such-program"}, entry.LaunchError.Command)
		}
	}
	assert.Equal(t, 1, launchErrors)
}

func TestShellPromptDefault(t *testing.T) {
	s, _, _ := newTestShell(t)

	assert.Equal(t, "> ", s.Prompt())
}

func TestShellPromptLiteral(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.cfg.Prompt = "demo% "

	assert.Equal(t, "demo% ", s.Prompt())
}

func TestShellPromptExpansion(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.cfg.Prompt = `\u@\h:\w\$ `
	t.Setenv("USER", "alice")
	t.Setenv("HOME", "/home/alice")
	s.cwd = "/home/alice/src"

	host, err := os.Hostname()
	require.NoError(t, err)
	dollar := "$"
	if os.Geteuid() == 0 {
		dollar = "#"
	}

	assert.Equal(t, "alice@"+host+":~/src"+dollar+" ", s.Prompt())
}

// runScript drives a full interpreter over scripted input and returns
// the exit status along with everything written to stdout.
func runScript(t *testing.T, cfg *config.Configuration, input string) (int, string, *Shell) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	s, err := NewShell(cfg, ShellIO{
		Stdin:      io.NopCloser(strings.NewReader(input)),
		Stdout:     stdout,
		Stderr:     stderr,
		IsTerminal: func() bool { return false },
		Width:      func() int { return 80 },
	}, nil)
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() {
		done <- s.Run()
	}()

	select {
	case code := <-done:
		return code, stdout.String(), s
	case <-time.After(10 * time.Second):
		t.Fatal("interpreter did not finish")
		return 0, "", nil
	}
}

func TestShellRunScript(t *testing.T) {
	cfg := &config.Configuration{
		Motd:            "welcome to protosh",
		HistoryMaxItems: DefaultHistoryMaxItems,
	}

	code, stdout, s := runScript(t, cfg, "help\nexit\n")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "welcome to protosh")
	assert.Contains(t, stdout, "Jonathan Medhanie's protosh")
	assert.Equal(t, []string{"0 help", "1 exit"}, collectHistory(s.history))
}

func TestShellRunEOF(t *testing.T) {
	cfg := &config.Configuration{HistoryMaxItems: DefaultHistoryMaxItems}

	code, _, s := runScript(t, cfg, "")

	assert.Equal(t, 0, code)
	assert.Equal(t, 0, s.history.Len())
}

func TestShellRunSkipsBlankLines(t *testing.T) {
	cfg := &config.Configuration{HistoryMaxItems: DefaultHistoryMaxItems}

	code, _, s := runScript(t, cfg, "   \n\nexit\n")

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"0 exit"}, collectHistory(s.history))
}

func TestShellRunStopsOnHistoryClear(t *testing.T) {
	cfg := &config.Configuration{HistoryMaxItems: DefaultHistoryMaxItems}

	code, stdout, s := runScript(t, cfg, "history -c\nhelp\n")

	assert.Equal(t, 0, code)
	assert.Equal(t, 0, s.history.Len())
	assert.NotContains(t, stdout, "Jonathan Medhanie's protosh")
}
