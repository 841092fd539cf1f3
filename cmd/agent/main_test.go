package main

import (
	"context"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisaviation/metricslog/internal/agent/collector"
	"github.com/alisaviation/metricslog/internal/config"
	"github.com/alisaviation/metricslog/internal/logger"
)

func TestNextDelay(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		d := nextDelay(rnd, 200*time.Millisecond, time.Second)
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.Less(t, d, time.Second)
	}
	assert.Equal(t, 50*time.Millisecond, nextDelay(rnd, 50*time.Millisecond, 50*time.Millisecond))
}

func TestWaitForEnter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	waitForEnter(strings.NewReader("abc\n"), cancel)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	waitForEnter(strings.NewReader("no newline"), cancel)
	assert.NoError(t, ctx.Err())
}

func TestRunWritesMetricsUntilCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.log")
	conf := &config.Agent{
		FilePath:      path,
		FlushInterval: 20 * time.Millisecond,
		LogLevel:      "info",
		MinDelay:      5 * time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	require.NoError(t, run(ctx, conf))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)

	all := string(data)
	for _, name := range []string{collector.CPU, collector.HTTPRequestsRPS, collector.ServerStatus, collector.PollCount} {
		assert.Contains(t, all, `"`+name+`" `)
	}
	for _, line := range lines {
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} "`, line)
	}
}

func TestRealMainExitCodes(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	assert.Equal(t, 2, realMain([]string{"-i", "0"}, strings.NewReader("")))
	assert.Equal(t, 2, realMain([]string{"-l", "loud"}, strings.NewReader("")))
	assert.Equal(t, 2, realMain([]string{"--bogus"}, strings.NewReader("")))
}

func TestRealMainStopsOnEnter(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	path := filepath.Join(t.TempDir(), "metrics.log")
	stdin, stdinWriter := io.Pipe()
	defer stdinWriter.Close()

	code := make(chan int, 1)
	go func() {
		code <- realMain([]string{"-f", path, "-i", "20", "--min-delay", "5", "--max-delay", "10", "-l", "error"}, stdin)
	}()

	time.Sleep(50 * time.Millisecond)
	_, err := stdinWriter.Write([]byte("\n"))
	require.NoError(t, err)

	select {
	case c := <-code:
		assert.Equal(t, 0, c)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not stop after Enter")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"`+collector.CPU+`" `)
}
