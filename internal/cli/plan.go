package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/geom"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

// layoutPlan is the JSON form of a grid plan.
type layoutPlan struct {
	Cols     int       `json:"cols"`
	Rows     int       `json:"rows"`
	Cell     geom.Size `json:"cell"`
	Size     geom.Size `json:"size"`
	MaxCells int       `json:"max_cells"`
}

func (c *CLI) planCommand() *cobra.Command {
	var (
		count    int
		cellSize string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Choose a grid layout for a number of equal cells",
		Long: `Choose the grid layout that packs count cells of one size into the
smallest power-of-two texture, preferring fewer columns on ties.`,
		Example: `  boardtex plan --count 52 --cell 250x350
  boardtex plan tiles 8192x4096 --chunk 2032 --gutter 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(cellSize)
			if err != nil {
				return err
			}
			layout, err := cell.OptimalLayout(count, size)
			if err != nil {
				return err
			}
			limit, _ := cell.MaxCellCount(size)
			plan := layoutPlan{Cols: layout.Cols, Rows: layout.Rows, Cell: size, Size: layout.Size(size), MaxCells: limit}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, plan)
			}
			writeKeyValue(w, "Layout", fmt.Sprintf("%d cols × %d rows", plan.Cols, plan.Rows))
			writeKeyValue(w, "Sheet", plan.Size.String())
			writeKeyValue(w, "Max cells", strconv.Itoa(plan.MaxCells))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "number of cells")
	cmd.Flags().StringVar(&cellSize, "cell", "", "cell size WxH")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("count")
	_ = cmd.MarkFlagRequired("cell")

	cmd.AddCommand(c.planTilesCommand())
	return cmd
}

func (c *CLI) planTilesCommand() *cobra.Command {
	var (
		opts   tiler.Options
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tiles <WxH>",
		Short: "Show how an image of the given size would be split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(args[0])
			if err != nil {
				return err
			}
			grid, err := tiler.Plan(size.W, size.H, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, grid)
			}
			writeKeyValue(w, "Grid", fmt.Sprintf("%d cols × %d rows", grid.Cols, grid.Rows))
			if grid.Size != grid.Original {
				writeKeyValue(w, "Shrunk", grid.Original.String()+" → "+grid.Size.String())
			}
			fmt.Fprintln(w, chunkTable(grid, opts.BaseName))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.ChunkSize, "chunk", 0, "interior tile size in pixels")
	cmd.Flags().IntVar(&opts.Gutter, "gutter", 0, "bleed added to every tile side")
	cmd.Flags().BoolVar(&opts.AutoGutter, "auto-gutter", false, "derive the gutter from the chunk size")
	cmd.Flags().IntVar(&opts.MaxDimension, "max-dimension", 0, "shrink the source so neither side exceeds this")
	cmd.Flags().StringVar(&opts.BaseName, "name", tiler.DefaultBaseName, "tile base name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("chunk")

	return cmd
}

// chunkTable renders one row per chunk.
func chunkTable(grid *tiler.Grid, base string) string {
	rows := make([][]string, len(grid.Chunks))
	for i, ch := range grid.Chunks {
		u, v := ch.UV.Center()
		rows[i] = []string{ch.Name(base), ch.Pixel.String(), fmt.Sprintf("%.4f, %.4f", u, v)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Tile", "Pixels", "UV center").
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
