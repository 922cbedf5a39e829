package cmd

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/batchserve/batchserve/batching"
	"github.com/batchserve/batchserve/batching/tensor"
)

var (
	// CLI flags for the synthetic workload
	logLevel   string        // Log verbosity level
	seed       int64         // Seed for workload generation
	callers    int           // Number of concurrent caller goroutines
	requests   int           // Requests per caller
	rowsMin    int           // Min rows (examples) per request
	rowsMax    int           // Max rows (examples) per request
	featureDim int           // Trailing dimension of each request tensor
	engineTime time.Duration // Simulated engine latency per batched call

	// CLI flags for the scheduler
	maxBatchSize       int
	batchTimeout       time.Duration
	maxEnqueuedBatches int
	numBatchThreads    int
	allowedBatchSizes  []int
	configPath         string // Optional YAML config overriding scheduler flags
)

// doublerEngine is the built-in synthetic engine: output "y" is 2*x for
// input "x". A configurable sleep stands in for model compute, so batching
// gains are visible in the report.
type doublerEngine struct {
	latency time.Duration

	mu      sync.Mutex
	calls   int
	rowsRun int
}

func (e *doublerEngine) Run(inputs []batching.NamedTensor, outputNames []string, targetNames []string) ([]*tensor.Tensor, error) {
	if len(inputs) != 1 || len(outputNames) != 1 {
		return nil, fmt.Errorf("doubler engine serves exactly one input and one output, got %d/%d", len(inputs), len(outputNames))
	}
	x := inputs[0].Tensor
	if e.latency > 0 {
		time.Sleep(e.latency)
	}
	data := make([]float32, x.NumElements())
	for i, v := range x.Data() {
		data[i] = 2 * v
	}
	out, err := tensor.New(x.Shape(), data)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.calls++
	e.rowsRun += x.DimSize(0)
	e.mu.Unlock()
	return []*tensor.Tensor{out}, nil
}

func (e *doublerEngine) stats() (calls, rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls, e.rowsRun
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Drive a synthetic workload through the batching session",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)

		if configPath != "" {
			cfg, err := LoadBenchConfig(configPath)
			if err != nil {
				return err
			}
			applyBenchConfig(cfg)
		}
		if rowsMin < 1 || rowsMax < rowsMin {
			return fmt.Errorf("invalid row range [%d, %d]", rowsMin, rowsMax)
		}

		runID := uuid.NewString()
		logrus.Infof("bench run %s: %d callers x %d requests, rows in [%d, %d], max batch %d, timeout %v",
			runID, callers, requests, rowsMin, rowsMax, maxBatchSize, batchTimeout)

		engine := &doublerEngine{latency: engineTime}
		signature := batching.NewSignature([]string{"x"}, []string{"y"})
		session, err := batching.NewBasic(
			batching.BasicSchedulerOptions{
				MaxBatchSize:       maxBatchSize,
				BatchTimeout:       batchTimeout,
				MaxEnqueuedBatches: maxEnqueuedBatches,
				NumBatchThreads:    numBatchThreads,
			},
			batching.Options{AllowedBatchSizes: allowedBatchSizes},
			signature, engine)
		if err != nil {
			return err
		}

		latencies, err := runWorkload(session)
		closeErr := session.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}

		printReport(runID, session.Metrics(), engine, latencies)
		return nil
	},
}

// runWorkload fans out the caller goroutines and collects per-request
// latencies. Each caller owns a seeded RNG so runs are reproducible for a
// given seed and caller count.
func runWorkload(session *batching.BatchingSession) ([]time.Duration, error) {
	var mu sync.Mutex
	latencies := make([]time.Duration, 0, callers*requests)

	var g errgroup.Group
	for c := 0; c < callers; c++ {
		rng := rand.New(rand.NewSource(seed + int64(c)))
		g.Go(func() error {
			for r := 0; r < requests; r++ {
				rows := rowsMin + rng.Intn(rowsMax-rowsMin+1)
				data := make([]float32, rows*featureDim)
				for i := range data {
					data[i] = rng.Float32()
				}
				in, err := tensor.New([]int{rows, featureDim}, data)
				if err != nil {
					return err
				}

				start := time.Now()
				outputs, err := session.Run([]batching.NamedTensor{{Name: "x", Tensor: in}}, []string{"y"}, nil)
				if err != nil {
					return fmt.Errorf("request failed: %w", err)
				}
				elapsed := time.Since(start)

				if len(outputs) != 1 || outputs[0].DimSize(0) != rows {
					return fmt.Errorf("row count mismatch: sent %d, got %d", rows, outputs[0].DimSize(0))
				}
				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return latencies, nil
}

func applyBenchConfig(cfg *BenchConfig) {
	if cfg.Scheduler.MaxBatchSize > 0 {
		maxBatchSize = cfg.Scheduler.MaxBatchSize
	}
	if cfg.Scheduler.BatchTimeoutMs > 0 {
		batchTimeout = time.Duration(cfg.Scheduler.BatchTimeoutMs) * time.Millisecond
	}
	if cfg.Scheduler.MaxEnqueuedBatches > 0 {
		maxEnqueuedBatches = cfg.Scheduler.MaxEnqueuedBatches
	}
	if cfg.Scheduler.NumBatchThreads > 0 {
		numBatchThreads = cfg.Scheduler.NumBatchThreads
	}
	if len(cfg.AllowedBatchSizes) > 0 {
		allowedBatchSizes = cfg.AllowedBatchSizes
	}
}

func printReport(runID string, m batching.MetricsSnapshot, engine *doublerEngine, latencies []time.Duration) {
	calls, rows := engine.stats()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println("=== Bench Report ===")
	fmt.Printf("Run ID            : %s\n", runID)
	fmt.Printf("Requests completed: %d\n", len(latencies))
	fmt.Printf("Engine calls      : %d (%d rows incl. padding)\n", calls, rows)
	fmt.Printf("Batching          : %s\n", m)
	if len(latencies) > 0 {
		fmt.Printf("Latency p50/p95/max: %v / %v / %v\n",
			percentile(latencies, 0.50), percentile(latencies, 0.95), latencies[len(latencies)-1])
	}
}

// percentile reads from a sorted latency slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func init() {
	benchCmd.Flags().StringVar(&logLevel, "log-level", "info", "log verbosity (debug, info, warn, error)")
	benchCmd.Flags().Int64Var(&seed, "seed", 42, "workload generation seed")
	benchCmd.Flags().IntVar(&callers, "callers", 8, "concurrent caller goroutines")
	benchCmd.Flags().IntVar(&requests, "requests", 100, "requests per caller")
	benchCmd.Flags().IntVar(&rowsMin, "rows-min", 1, "min examples per request")
	benchCmd.Flags().IntVar(&rowsMax, "rows-max", 4, "max examples per request")
	benchCmd.Flags().IntVar(&featureDim, "feature-dim", 16, "trailing dimension per example")
	benchCmd.Flags().DurationVar(&engineTime, "engine-latency", 2*time.Millisecond, "simulated engine latency per batched call")

	benchCmd.Flags().IntVar(&maxBatchSize, "max-batch-size", 16, "scheduler max batch size (rows)")
	benchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 5*time.Millisecond, "max wait before a partial batch is dispatched")
	benchCmd.Flags().IntVar(&maxEnqueuedBatches, "max-enqueued-batches", 64, "pending batch queue depth")
	benchCmd.Flags().IntVar(&numBatchThreads, "num-batch-threads", 2, "worker goroutines draining batches")
	benchCmd.Flags().IntSliceVar(&allowedBatchSizes, "allowed-batch-sizes", nil, "ascending allowed batch sizes; last must equal max-batch-size")
	benchCmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding scheduler flags")

	rootCmd.AddCommand(benchCmd)
}
