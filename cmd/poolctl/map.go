package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/joshuapare/quadpool/mempool"
)

var (
	mapAllocs    []int
	mapWidth     int
	mapMaxBlocks int
)

func init() {
	cmd := newMapCmd()
	cmd.Flags().IntSliceVar(&mapAllocs, "alloc", nil, "Request sizes to allocate before rendering (e.g. 4,16,200)")
	cmd.Flags().IntVar(&mapWidth, "width", 64, "Blocks per row")
	cmd.Flags().IntVar(&mapMaxBlocks, "max-blocks", 256, "Blocks shown per level before truncating")
	rootCmd.AddCommand(cmd)
}

func newMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Render the per-level block map of a pool",
		Long: `The map command allocates the given request sizes from a fresh pool and
renders every level's blocks:

  .  free      #  allocated      +  split      (blank) not present

Example:
  poolctl map --preset tiny --alloc 4,16,40
  poolctl map --preset small --alloc 100,100,3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap()
		},
	}
}

// MapReport is the JSON form of the map command.
type MapReport struct {
	Allocated []MapAlloc `json:"allocated"`
	Failed    []int      `json:"failed,omitempty"`
	Levels    [][]string `json:"levels"`
}

// MapAlloc records where one requested size landed.
type MapAlloc struct {
	Size  int    `json:"size"`
	Level uint32 `json:"level"`
	Index uint32 `json:"index"`
}

func runMap() error {
	applyColorMode()

	cfg, err := poolConfig()
	if err != nil {
		return err
	}
	// Block positions are only known for kernel pools
	cfg.Kind = mempool.KindKernel
	kp, err := mempool.NewKernel(cfg)
	if err != nil {
		return err
	}
	defer kp.Close()

	var rep MapReport
	for _, size := range mapAllocs {
		blk, err := kp.Alloc(size)
		if err != nil {
			rep.Failed = append(rep.Failed, size)
			printVerbose("alloc(%d): %v\n", size, err)
			continue
		}
		rep.Allocated = append(rep.Allocated, MapAlloc{Size: size, Level: blk.Level, Index: blk.Index})
	}

	snap := kp.Snapshot()
	if jsonOut {
		for _, row := range snap {
			names := make([]string, len(row))
			for i, s := range row {
				names[i] = s.String()
			}
			rep.Levels = append(rep.Levels, names)
		}
		return printJSON(rep)
	}

	printInfo("%s\n\n", titleStyle.Render(fmt.Sprintf("Block map: %s", cfg.Name)))
	for _, a := range rep.Allocated {
		printInfo("  alloc(%d) -> level %d block %d\n", a.Size, a.Level, a.Index)
	}
	for _, size := range rep.Failed {
		printInfo("  alloc(%d) -> out of memory\n", size)
	}
	if len(mapAllocs) > 0 {
		printInfo("\n")
	}

	for l, row := range snap {
		label := levelStyle.Render(fmt.Sprintf("L%d %s B x %s", l,
			formatNumber(int64(kp.LevelSize(l))), formatNumber(int64(len(row)))))
		printInfo("%s\n", lipgloss.JoinHorizontal(lipgloss.Top, label, renderRow(row)))
	}
	printInfo("\n%s\n", renderLegend())
	return nil
}

// renderRow draws one level as wrapped rows of block glyphs.
func renderRow(row []mempool.BlockState) string {
	width := max(1, mapWidth)
	shown := row
	if mapMaxBlocks > 0 && len(shown) > mapMaxBlocks {
		shown = shown[:mapMaxBlocks]
	}

	var lines []string
	var sb strings.Builder
	for i, s := range shown {
		if i > 0 && i%width == 0 {
			lines = append(lines, sb.String())
			sb.Reset()
		}
		sb.WriteString(glyph(s))
	}
	if sb.Len() > 0 {
		lines = append(lines, sb.String())
	}
	if rest := len(row) - len(shown); rest > 0 {
		lines = append(lines, absentStyle.Render(fmt.Sprintf("... %s more", formatNumber(int64(rest)))))
	}
	return strings.Join(lines, "\n")
}

func glyph(s mempool.BlockState) string {
	switch s {
	case mempool.StateFree:
		return freeStyle.Render(".")
	case mempool.StateAllocated:
		return allocatedStyle.Render("#")
	case mempool.StateSplit:
		return splitStyle.Render("+")
	default:
		return absentStyle.Render(" ")
	}
}

func renderLegend() string {
	return strings.Join([]string{
		glyph(mempool.StateFree) + " free",
		glyph(mempool.StateAllocated) + " allocated",
		glyph(mempool.StateSplit) + " split",
	}, "   ")
}
