package core

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func runLauncher(l *Launcher, argv ...string) (Signal, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	sig := l.Run(argv, strings.NewReader(""), stdout, stderr)
	return sig, stdout.String(), stderr.String()
}

func TestLauncherMissingProgram(t *testing.T) {
	l := NewLauncher(nil, nil)
	var reported []string
	l.OnStartError = func(argv []string, err error) {
		reported = argv
	}

	sig, stdout, stderr := runLauncher(l, "protosh-no-such-program")

	assert.Equal(t, Continue, sig)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "protosh: ")
	assert.Equal(t, []string{"protosh-no-such-program"}, reported)
}

func TestLauncherOutput(t *testing.T) {
	l := NewLauncher(nil, nil)

	sig, stdout, stderr := runLauncher(l, "sh", "-c", "echo hello")

	assert.Equal(t, Continue, sig)
	assert.Equal(t, "hello\n", stdout)
	assert.Empty(t, stderr)
}

func TestLauncherNonZeroExitQuiet(t *testing.T) {
	l := NewLauncher(nil, nil)

	sig, stdout, stderr := runLauncher(l, "sh", "-c", "exit 3")

	assert.Equal(t, Continue, sig)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestLauncherWorkdir(t *testing.T) {
	dir := t.TempDir()
	l := NewLauncher(nil, func() string { return dir })

	sig, stdout, _ := runLauncher(l, "sh", "-c", "pwd")

	assert.Equal(t, Continue, sig)
	assert.Equal(t, dir+"\n", stdout)
}

func TestLauncherInterrupt(t *testing.T) {
	l := NewLauncher(nil, nil)

	done := make(chan Signal, 1)
	go func() {
		sig, _, _ := runLauncher(l, "sh", "-c", "sleep 30")
		done <- sig
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		l.mu.Lock()
		running := len(l.active) > 0
		l.mu.Unlock()
		if running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("child never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	l.Interrupt()

	select {
	case sig := <-done:
		assert.Equal(t, Continue, sig)
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt did not stop the child")
	}
}
