package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/quadpool/internal/arena"
	"github.com/joshuapare/quadpool/internal/logger"
	"github.com/joshuapare/quadpool/mempool"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool
	logDir  string

	// Pool geometry flags
	preset      string
	maxBlock    int
	nMax        int
	numLevels   int
	kindName    string
	backingName string
	lockPages   bool
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Inspect and exercise quad-tree memory pools",
	Long: `poolctl builds a quad-tree memory pool from the given geometry and
lets you inspect its layout, drive seeded workloads against it, stress it from
many goroutines, and render its block map.

Pool geometry comes from --preset or from --max-block, --n-max and --levels.`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

// initLogging enables the global logger when --verbose or --log-dir is set.
// Verbose runs log at debug level; --log-dir alone records info and above.
func initLogging() error {
	if !verbose && logDir == "" {
		return nil
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logger.Init(logger.Options{Enabled: true, LogDir: logDir, Level: level})
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write JSON logs to a dated file in this directory")

	def := mempool.ConfigDefault
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "Named geometry: tiny, small, medium, large (overrides size flags)")
	rootCmd.PersistentFlags().IntVar(&maxBlock, "max-block", def.MaxBlockSize, "Level-0 block size in bytes")
	rootCmd.PersistentFlags().IntVar(&nMax, "n-max", def.NumMax, "Number of level-0 blocks")
	rootCmd.PersistentFlags().IntVar(&numLevels, "levels", def.NumLevels, "Number of levels")
	rootCmd.PersistentFlags().StringVar(&kindName, "kind", "kernel", "Pool kind: kernel or user")
	rootCmd.PersistentFlags().StringVar(&backingName, "backing", "heap", "Arena backing: heap or mmap")
	rootCmd.PersistentFlags().BoolVar(&lockPages, "lock-pages", false, "Lock mmap-backed arenas into RAM")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// poolConfig assembles a mempool.Config from the global flags.
func poolConfig() (mempool.Config, error) {
	var cfg mempool.Config
	switch strings.ToLower(preset) {
	case "":
		cfg = mempool.Config{
			Name:         "custom",
			MaxBlockSize: maxBlock,
			NumMax:       nMax,
			NumLevels:    numLevels,
		}
	case "tiny":
		cfg = mempool.ConfigTiny
	case "small":
		cfg = mempool.ConfigSmall
	case "medium", "default":
		cfg = mempool.ConfigMedium
	case "large":
		cfg = mempool.ConfigLarge
	default:
		return cfg, fmt.Errorf("unknown preset %q", preset)
	}

	kind, err := mempool.ParseKind(kindName)
	if err != nil {
		return cfg, err
	}
	backing, err := arena.ParseBacking(backingName)
	if err != nil {
		return cfg, err
	}
	cfg.Kind = kind
	cfg.Backing = backing
	cfg.LockPages = lockPages

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Helper functions for output

var numbers = message.NewPrinter(language.English)

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatNumber groups digits the English way: 1234567 -> 1,234,567.
func formatNumber(n int64) string {
	return numbers.Sprintf("%d", n)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// printPoolStats prints the counters shared by simulate and stress.
func printPoolStats(s mempool.Stats) {
	printInfo("Counters:\n")
	printInfo("  Alloc calls:  %s\n", formatNumber(int64(s.AllocCalls)))
	printInfo("  Free calls:   %s\n", formatNumber(int64(s.FreeCalls)))
	printInfo("  Splits:       %s\n", formatNumber(int64(s.Splits)))
	printInfo("  Recombines:   %s\n", formatNumber(int64(s.Recombines)))
	printInfo("  Restarts:     %s\n", formatNumber(int64(s.Restarts)))
	printInfo("  Out of memory: %s\n", formatNumber(int64(s.NoMem)))
	printInfo("  Bytes in use: %s\n", formatNumber(s.BytesInUse))
	printInfo("  Free bytes:   %s\n", formatNumber(s.FreeBytes()))
}
