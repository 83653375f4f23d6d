package cmd

import (
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmedhanie/protosh/core/config"
	"github.com/jmedhanie/protosh/core/ttylog"
)

// writeTranscript initializes dir and stores one short asciicast
// transcript under the given name.
func writeTranscript(t *testing.T, dir, name string) {
	t.Helper()

	require.NoError(t, config.Initialize(dir, log.New(ioutil.Discard, "", 0)))
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	fd, err := cfg.CreateSessionLog(name)
	require.NoError(t, err)
	defer fd.Close()

	sink := ttylog.NewAsciicastLogSink(fd)
	base := time.Now().UnixMicro()
	require.NoError(t, sink(ttylog.NewIOEntry(base, ttylog.FDStdout, []byte("hello "))))
	require.NoError(t, sink(ttylog.NewIOEntry(base+1000, ttylog.FDStdin, []byte("typed"))))
	require.NoError(t, sink(ttylog.NewIOEntry(base+2000, ttylog.FDStdout, []byte("world\r\n"))))
}

func TestLogsLs(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "demo.cast")

	out, err := runCommand(t, "--config", dir, "logs", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "demo.cast")
}

func TestLogsCat(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "demo.cast")

	out, err := runCommand(t, "--config", dir, "logs", "cat", "demo.cast")
	require.NoError(t, err)
	assert.Equal(t, "hello world\r\n", out)
}

func TestLogsPlay(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "demo.cast")

	out, err := runCommand(t, "--config", dir, "logs", "play", "-i", "1ms", "demo.cast")
	require.NoError(t, err)
	assert.Equal(t, "hello world\r\n", out)
}
