package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/pkg/manifest"
	"github.com/matzehuels/boardtex/pkg/observability"
	"github.com/matzehuels/boardtex/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	sheets  []string // sheet names to build (all when both lists are empty)
	splits  []string // split names to run
	pick    bool     // choose jobs interactively
	output  string   // output directory (default: the manifest's directory)
	noCache bool     // bypass the artifact cache entirely
	refresh bool     // recompute and overwrite cached artifacts
}

func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <manifest>",
		Short: "Render the sheets and splits of a manifest",
		Long: `Render the sheets and splits defined in a TOML manifest.

Without --sheet, --split or --pick every job runs. Outputs are written under
the output directory using the names from the manifest.`,
		Example: `  boardtex build deck.toml
  boardtex build deck.toml --sheet cards -o dist
  boardtex build deck.toml --pick`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeManifest,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.sheets, "sheet", nil, "sheet to build (repeatable)")
	cmd.Flags().StringSliceVar(&opts.splits, "split", nil, "split to run (repeatable)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose jobs interactively")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: manifest directory)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts and overwrite them")
	_ = cmd.RegisterFlagCompletionFunc("sheet", completeJobs(jobSheet))
	_ = cmd.RegisterFlagCompletionFunc("split", completeJobs(jobSplit))

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, path string, opts buildOpts) error {
	ctx, r := cmd.Context(), newReport(cmd)
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	if opts.refresh && opts.noCache {
		r.warning("--refresh has no effect with --no-cache")
	}

	popts := c.pipelineOptions()
	popts.Sheets, popts.Splits = opts.sheets, opts.splits
	popts.Refresh = opts.refresh
	if opts.pick {
		jobs, err := pickJobs(m)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			r.info("Nothing selected")
			return nil
		}
		popts.Sheets, popts.Splits = splitJobs(jobs)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Building "+filepath.Base(path)+"...")
	restore := watchJobs(spinner)
	spinner.Start()
	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, m, popts)
	spinner.Stop()
	restore()
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = m.Dir
	}
	paths, err := pipeline.WriteArtifacts(out, result)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s: %s", filepath.Base(path), result.Stats))

	r.success("Built %d sheets and %d splits", len(result.Sheets), len(result.Splits))
	for _, s := range result.Sheets {
		r.job("sheet", s.Name, []string{s.Size.String(), fmt.Sprintf("%d cells", s.Cells), roundMillis(s.Duration)}, s.CacheHit)
	}
	for _, s := range result.Splits {
		details := []string{
			fmt.Sprintf("%dx%d tiles", s.Index.Cols, s.Index.Rows),
			fmt.Sprintf("%d px", s.Index.ChunkSize+2*s.Index.Gutter),
			roundMillis(s.Duration),
		}
		r.job("split", s.Name, details, s.CacheHit)
	}
	for _, p := range paths {
		r.file(p)
	}
	if len(result.Sheets) > 0 {
		r.nextStep("Inspect a sheet's cell tree", fmt.Sprintf("%s tree %s --sheet %s", appName, path, result.Sheets[0].Name))
	}
	return nil
}

func roundMillis(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// jobHooks mirrors pipeline progress onto the spinner.
type jobHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h jobHooks) OnSheetStart(_ context.Context, sheet string) {
	h.spinner.SetMessage("Rendering sheet " + sheet + "...")
}

func (h jobHooks) OnSplitStart(_ context.Context, split string, chunks int) {
	h.spinner.SetMessage(fmt.Sprintf("Splitting %s into %d tiles...", split, chunks))
}

// watchJobs installs jobHooks and returns a function restoring the previous
// hooks.
func watchJobs(s *Spinner) func() {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(jobHooks{spinner: s})
	return func() { observability.SetPipelineHooks(prev) }
}
