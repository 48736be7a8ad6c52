package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/manifest"
	"github.com/matzehuels/boardtex/pkg/pipeline"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

// splitOpts holds the command-line flags for the split command.
type splitOpts struct {
	chunk          int
	gutter         int
	autoGutter     bool
	mask           string
	maskMultiplier int
	maxDimension   int
	objectSize     string // "WxH" in object units, e.g. "30x30"
	fillCorners    bool
	format         string
	name           string
	output         string
	noCache        bool
}

func (c *CLI) splitCommand() *cobra.Command {
	var opts splitOpts

	cmd := &cobra.Command{
		Use:   "split <image>",
		Short: "Cut an image into bled tiles with a placement index",
		Long: `Cut an image into chunk-sized tiles, each extended by a bleed gutter, and
write a JSON index with pixel, UV and optional object-space placement.

Tiles are named {name}-{col}x{row}; mask tiles {name}-mask-{col}x{row}.`,
		Example: `  boardtex split board.png --chunk 2032 --gutter 8
  boardtex split board.png --chunk 1024 --auto-gutter --mask board-mask.png --mask-multiplier 4
  boardtex split board.png --chunk 2048 --object-size 30x30 -o tiles`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSplit(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.chunk, "chunk", 0, fmt.Sprintf("interior tile size in pixels (1-%d)", tiler.MaxChunkSize))
	cmd.Flags().IntVar(&opts.gutter, "gutter", 0, "bleed added to every tile side in pixels")
	cmd.Flags().BoolVar(&opts.autoGutter, "auto-gutter", false, "derive the gutter from the chunk size")
	cmd.Flags().StringVar(&opts.mask, "mask", "", "mask image split alongside the source")
	cmd.Flags().IntVar(&opts.maskMultiplier, "mask-multiplier", 1, "source pixels per mask pixel")
	cmd.Flags().IntVar(&opts.maxDimension, "max-dimension", 0, "shrink the source so neither side exceeds this")
	cmd.Flags().StringVar(&opts.objectSize, "object-size", "", "object size WxH for object-space placement")
	cmd.Flags().BoolVar(&opts.fillCorners, "fill-corners", false, "fill gutter corners instead of leaving them transparent")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "tile format: png (default), jpeg")
	cmd.Flags().StringVar(&opts.name, "name", "", "tile base name (default: image file name)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	_ = cmd.MarkFlagRequired("chunk")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{string(codec.FormatPNG), string(codec.FormatJPEG)}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// splitJob turns command-line options into a one-split manifest. Paths stay
// as given, so they resolve against the working directory.
func splitJob(image string, opts splitOpts) (*manifest.Manifest, error) {
	name := opts.name
	if name == "" {
		base := filepath.Base(image)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := errors.ValidateAssetName(name); err != nil {
		return nil, fmt.Errorf("%w (use --name)", err)
	}
	if _, err := codec.ParseFormat(opts.format); err != nil {
		return nil, err
	}

	job := manifest.Split{
		Name:           name,
		Source:         image,
		Mask:           opts.mask,
		Chunk:          opts.chunk,
		Gutter:         opts.gutter,
		AutoGutter:     opts.autoGutter,
		MaxDimension:   opts.maxDimension,
		MaskMultiplier: opts.maskMultiplier,
		FillCorners:    opts.fillCorners,
		Format:         opts.format,
	}
	if opts.objectSize != "" {
		obj, err := parseSizeF(opts.objectSize)
		if err != nil {
			return nil, err
		}
		job.ObjectWidth, job.ObjectHeight = obj.W, obj.H
	}
	return &manifest.Manifest{Splits: []manifest.Split{job}}, nil
}

func (c *CLI) runSplit(cmd *cobra.Command, image string, opts splitOpts) error {
	ctx, r := cmd.Context(), newReport(cmd)
	m, err := splitJob(image, opts)
	if err != nil {
		return err
	}
	job := &m.Splits[0]

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Splitting "+filepath.Base(image)+"...")
	spinner.Start()
	prog := newProgress(c.Logger)
	res, err := runner.Split(ctx, m, job, c.pipelineOptions())
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := pipeline.WriteFiles(opts.output, res.Artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Split %s into %d tiles", filepath.Base(image), len(res.Index.Tiles)))

	idx := res.Index
	r.success("Split %s", filepath.Base(image))
	r.job("split", job.Name, []string{
		fmt.Sprintf("%dx%d tiles", idx.Cols, idx.Rows),
		fmt.Sprintf("%d px", idx.ChunkSize+2*idx.Gutter),
		fmt.Sprintf("gutter %d", idx.Gutter),
	}, res.CacheHit)
	if idx.Size != idx.Original {
		r.detail("Source shrunk from %s to %s", idx.Original, idx.Size)
	}
	for _, p := range paths {
		r.file(p)
	}
	return nil
}
