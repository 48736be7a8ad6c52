package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/manifest"
	"github.com/matzehuels/boardtex/pkg/render/treeviz"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	sheet  string
	format string // svg, dot or png
	output string // file to write; stdout when empty
	viz    treeviz.Options
}

func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "tree <manifest>",
		Short: "Draw the cell tree of a sheet",
		Long: `Draw the cell tree of a sheet as a Graphviz diagram. Each node shows the
cell kind, its size and a short description; --offsets labels edges with the
child's position inside its parent.`,
		Example: `  boardtex tree deck.toml --sheet cards -o cards-tree.svg
  boardtex tree deck.toml -f dot | dot -Tpdf > tree.pdf`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeManifest,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.runTree(cmd, args[0], opts)
			if err != nil {
				return err
			}
			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "write %s", opts.output)
			}
			newReport(cmd).file(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "sheet to draw (required when the manifest has several)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.viz.Offsets, "offsets", false, "label edges with child offsets")
	cmd.Flags().IntVar(&opts.viz.MaxDepth, "depth", 0, "stop drawing below this depth (0: whole tree)")
	_ = cmd.RegisterFlagCompletionFunc("sheet", completeJobs(jobSheet))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"svg", "dot", "png"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runTree(cmd *cobra.Command, path string, opts treeOpts) ([]byte, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	s, err := chooseSheet(m, opts.sheet)
	if err != nil {
		return nil, err
	}

	loader, err := c.config().Render.Loader()
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	root, err := m.Build(s, loader)
	if err != nil {
		return nil, err
	}
	dot := treeviz.ToDOT(root, opts.viz)
	c.Logger.Debug("built tree", "sheet", s.Name, "size", root.Size())

	return treeviz.Render(cmd.Context(), dot, treeviz.Format(opts.format))
}

// chooseSheet finds the named sheet, or the only one when name is empty.
func chooseSheet(m *manifest.Manifest, name string) (*manifest.Sheet, error) {
	if name == "" {
		if len(m.Sheets) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "manifest has %d sheets, choose one with --sheet", len(m.Sheets))
		}
		return &m.Sheets[0], nil
	}
	s, ok := m.FindSheet(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no sheet named %q", name)
	}
	return s, nil
}
