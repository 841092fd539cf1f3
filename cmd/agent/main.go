package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alisaviation/metricslog/internal/agent/collector"
	"github.com/alisaviation/metricslog/internal/config"
	"github.com/alisaviation/metricslog/internal/logger"
	"github.com/alisaviation/metricslog/internal/models"
	"github.com/alisaviation/metricslog/internal/storage"
	"github.com/alisaviation/metricslog/internal/writer"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin))
}

// realMain returns the process exit code so deferred cleanup runs before
// main exits.
func realMain(args []string, stdin io.Reader) int {
	conf, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 2
	}
	if err := logger.Initialize(conf.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "Error setting up logger:", err)
		return 2
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go waitForEnter(stdin, cancel)

	if err := run(ctx, conf); err != nil {
		logger.Log.Error("agent failed", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, conf *config.Agent) error {
	memStorage := storage.NewMemStorage()
	metricsWriter, err := writer.New(conf.Writer(), memStorage)
	if err != nil {
		return fmt.Errorf("create metrics writer: %w", err)
	}
	defer metricsWriter.Stop()

	fmt.Println("Press Enter to stop the program...")

	seed := time.Now().UnixNano()
	collectorInstance := collector.NewCollector(seed)
	rnd := rand.New(rand.NewSource(seed + 1))

	pollTimer := time.NewTimer(0)
	defer pollTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			kinds := make(map[string]string, memStorage.Len())
			for name, kind := range memStorage.Kinds() {
				kinds[name] = kind.String()
			}
			logger.Log.Info("shutting down", zap.Any("metrics", kinds))
			return nil

		case <-pollTimer.C:
			for _, sample := range collectorInstance.CollectMetrics() {
				if err := metricsWriter.Record(sample.Name, sample.Value); err != nil {
					if errors.Is(err, models.ErrTypeMismatch) {
						return err
					}
					logger.Log.Error("Error recording metric", zap.String("name", sample.Name), zap.Error(err))
				}
			}
			pollTimer.Reset(nextDelay(rnd, conf.MinDelay, conf.MaxDelay))
		}
	}
}

func nextDelay(rnd *rand.Rand, minDelay, maxDelay time.Duration) time.Duration {
	if maxDelay <= minDelay {
		return minDelay
	}
	return minDelay + time.Duration(rnd.Int63n(int64(maxDelay-minDelay)))
}

// waitForEnter calls stop once a newline is read from in. A closed input
// leaves shutdown to the signal handler.
func waitForEnter(in io.Reader, stop context.CancelFunc) {
	reader := bufio.NewReader(in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b == '\n' {
			stop()
			return
		}
	}
}
