package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/quadpool/mempool"
)

var (
	stressWorkers int
	stressOps     int
	stressHold    int
	stressMaxSize int
	stressSeed    int64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 8, "Number of goroutines")
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Operations per goroutine")
	cmd.Flags().IntVar(&stressHold, "hold", 8, "Allocations each goroutine keeps live at most")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 0, "Largest request size (0 = a quarter of the level-0 block size)")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Base random seed; goroutine i uses seed+i")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Hammer a pool from many goroutines",
		Long: `The stress command runs concurrent alloc/free loops against one pool.
Every goroutine stamps its allocations and checks the stamp before freeing, so
overlapping blocks are reported. Kernel pools report how often an allocation
had to restart because another goroutine drained its free list.

Example:
  poolctl stress --preset large --workers 16 --ops 50000
  poolctl stress --kind user --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

// StressReport is the JSON form of the stress command.
type StressReport struct {
	Workers   int           `json:"workers"`
	Ops       int           `json:"ops_per_worker"`
	Failed    int64         `json:"failed_allocs"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	OpsPerSec float64       `json:"ops_per_sec"`
	Stats     mempool.Stats `json:"stats"`
}

type heldAlloc struct {
	data    []byte
	release func() error
	stamp   byte
}

func runStress() error {
	cfg, err := poolConfig()
	if err != nil {
		return err
	}
	t, err := openTarget(cfg)
	if err != nil {
		return err
	}
	defer t.close()

	maxSize := stressMaxSize
	if maxSize <= 0 {
		maxSize = max(1, cfg.MaxBlockSize/4)
	}
	hold := max(1, stressHold)

	failed := make([]int64, stressWorkers)
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < stressWorkers; w++ {
		w := w
		g.Go(func() error {
			rng := rand.New(rand.NewSource(stressSeed + int64(w)))
			stamp := byte(w%255 + 1)
			var held []heldAlloc

			release := func(h heldAlloc) error {
				for _, c := range h.data {
					if c != h.stamp {
						return fmt.Errorf("worker %d: allocation overwritten by another goroutine", w)
					}
				}
				return h.release()
			}

			for i := 0; i < stressOps; i++ {
				if len(held) >= hold || (len(held) > 0 && rng.Intn(2) == 0) {
					j := rng.Intn(len(held))
					h := held[j]
					held[j] = held[len(held)-1]
					held = held[:len(held)-1]
					if err := release(h); err != nil {
						return err
					}
					continue
				}

				data, rel, ok := t.alloc(1 + rng.Intn(maxSize))
				if !ok {
					failed[w]++
					continue
				}
				for k := range data {
					data[k] = stamp
				}
				held = append(held, heldAlloc{data: data, release: rel, stamp: stamp})
			}

			for _, h := range held {
				if err := release(h); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := t.pool.Verify(); err != nil {
		return fmt.Errorf("after stress: %w", err)
	}

	rep := StressReport{
		Workers: stressWorkers,
		Ops:     stressOps,
		Elapsed: elapsed,
		Stats:   t.pool.Stats(),
	}
	for _, n := range failed {
		rep.Failed += n
	}
	if secs := elapsed.Seconds(); secs > 0 {
		rep.OpsPerSec = float64(stressWorkers*stressOps) / secs
	}

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("\nStress: %d workers x %s ops, %s pool\n", rep.Workers, formatNumber(int64(rep.Ops)), cfg.Kind)
	printInfo("  Elapsed:        %s\n", rep.Elapsed.Round(time.Microsecond))
	printInfo("  Throughput:     %s ops/s\n", formatNumber(int64(rep.OpsPerSec)))
	printInfo("  Failed allocs:  %s\n\n", formatNumber(rep.Failed))
	printPoolStats(rep.Stats)
	printInfo("\nPool verified after all workers finished.\n")
	return nil
}
