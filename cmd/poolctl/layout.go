package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/quadpool/internal/format"
	"github.com/joshuapare/quadpool/mempool"
)

func init() {
	rootCmd.AddCommand(newLayoutCmd())
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show the level table and bitmap placement of a pool",
		Long: `The layout command builds a pool and prints its level sizes, block
counts and where each level keeps its free bitmap.

Example:
  poolctl layout --preset small
  poolctl layout --max-block 1024 --n-max 4 --levels 4 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout()
		},
	}
}

// LayoutReport is the JSON form of the layout command.
type LayoutReport struct {
	Name           string        `json:"name"`
	Kind           mempool.Kind  `json:"kind"`
	ArenaBytes     int           `json:"arena_bytes"`
	BitmapWords    int           `json:"bitmap_words"`
	RegionBytes    int           `json:"region_bytes"`
	MaxInlineLevel int           `json:"max_inline_level"`
	Levels         []LayoutLevel `json:"levels"`
}

// LayoutLevel describes one level of a LayoutReport.
type LayoutLevel struct {
	Level      int    `json:"level"`
	BlockSize  int    `json:"block_size"`
	Blocks     int    `json:"blocks"`
	Bitmap     string `json:"bitmap"` // "inline" or "external"
	WordOffset int    `json:"word_offset,omitempty"`
	Words      int    `json:"words"`
}

func buildLayout(p *mempool.Pool) LayoutReport {
	s := p.Stats()
	rep := LayoutReport{
		Name:           s.Name,
		Kind:           s.Kind,
		ArenaBytes:     s.ArenaBytes,
		BitmapWords:    s.BitmapWords,
		RegionBytes:    s.ArenaBytes + s.BitmapWords*format.WordSize,
		MaxInlineLevel: p.MaxInlineLevel(),
	}

	off := 0
	for _, lv := range s.Levels {
		ll := LayoutLevel{
			Level:     lv.Level,
			BlockSize: lv.BlockSize,
			Blocks:    lv.Blocks,
			Bitmap:    "inline",
			Words:     1,
		}
		if !lv.Inline {
			ll.Bitmap = "external"
			ll.WordOffset = off
			ll.Words = format.WordsFor(lv.Blocks)
			off += ll.Words
		}
		rep.Levels = append(rep.Levels, ll)
	}
	return rep
}

func runLayout() error {
	cfg, err := poolConfig()
	if err != nil {
		return err
	}
	p, err := mempool.New(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	rep := buildLayout(p)
	if jsonOut {
		return printJSON(rep)
	}

	printInfo("\nPool Layout: %s (%s)\n", rep.Name, rep.Kind)
	printInfo("%s\n\n", strings.Repeat("═", 40))
	printInfo("  Arena:            %s bytes (%s)\n", formatNumber(int64(rep.ArenaBytes)), formatBytes(int64(rep.ArenaBytes)))
	printInfo("  Bitmap words:     %s\n", formatNumber(int64(rep.BitmapWords)))
	printInfo("  Region:           %s bytes\n", formatNumber(int64(rep.RegionBytes)))
	printInfo("  Max inline level: %d\n\n", rep.MaxInlineLevel)

	printInfo("  %5s  %12s  %10s  %s\n", "Level", "Block size", "Blocks", "Bitmap")
	for _, lv := range rep.Levels {
		where := "inline"
		if lv.Bitmap == "external" {
			where = fmt.Sprintf("external @ word %d (%d words)", lv.WordOffset, lv.Words)
		}
		printInfo("  %5d  %12s  %10s  %s\n",
			lv.Level, formatNumber(int64(lv.BlockSize)), formatNumber(int64(lv.Blocks)), where)
	}
	return nil
}
