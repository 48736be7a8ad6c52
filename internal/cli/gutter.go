package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

func (c *CLI) gutterCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "gutter <inset|outset> <WxH>",
		Short: "Compute the bleed rectangle for a texture",
		Long: `Compute the bleed rectangle for a texture.

inset takes the full texture size and returns the interior that leaves room
for a gutter scaled to 1/256 of each side. outset takes an interior size and
returns the full texture that contains it.`,
		Example: `  boardtex gutter inset 4096x1024
  boardtex gutter outset 4064x1016 --json`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"inset", "outset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(args[1])
			if err != nil {
				return err
			}
			var r geom.Rect
			switch args[0] {
			case "inset":
				r = geom.InsetForUVs(size.W, size.H)
			case "outset":
				r = geom.OutsetForUVs(size.W, size.H)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "mode must be inset or outset, got %q", args[0])
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, r)
			}
			writeKeyValue(w, "Offset", fmt.Sprintf("%d, %d", r.Left, r.Top))
			writeKeyValue(w, "Size", r.Size().String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
