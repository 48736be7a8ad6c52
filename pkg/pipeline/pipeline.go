// Package pipeline runs the jobs of a build manifest.
//
// A manifest holds two kinds of job: sheets, which render a cell tree to a
// single image, and splits, which cut a large image into bled tiles plus a
// JSON placement index. The Runner executes both with caching so CLI and
// HTTP entry points behave the same way.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, loader, logger)
//	result, err := runner.Execute(ctx, m, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := pipeline.WriteArtifacts("out", result)
//
// Run a single job:
//
//	sheet, err := runner.BuildSheet(ctx, m, &m.Sheets[0], pipeline.Options{})
//	split, err := runner.Split(ctx, m, &m.Splits[0], pipeline.Options{})
package pipeline

import (
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
	"github.com/matzehuels/boardtex/pkg/manifest"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 30 * 24 * time.Hour

// IndexExt is appended to a split's name to form its index file name.
const IndexExt = ".json"

// Options selects and tunes the jobs of one run.
type Options struct {
	// Sheets and Splits name the jobs to run. When both are empty every
	// job in the manifest runs.
	Sheets []string `json:"sheets,omitempty"`
	Splits []string `json:"splits,omitempty"`

	// Refresh ignores cached artifacts but still stores new ones.
	Refresh bool `json:"refresh,omitempty"`

	// Concurrency bounds the tiles cut and encoded at once.
	Concurrency int `json:"concurrency,omitempty"`

	// TTL applies to stored artifacts. Zero means DefaultTTL.
	TTL time.Duration `json:"ttl,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks job names and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must not be negative, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ttl must not be negative, got %s", o.TTL)
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	for _, n := range append(slices.Clone(o.Sheets), o.Splits...) {
		if err := errors.ValidateAssetName(n); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// Select returns the sheets and splits of m chosen by o. Unknown names are
// an INVALID_INPUT error.
func (o *Options) Select(m *manifest.Manifest) ([]*manifest.Sheet, []*manifest.Split, error) {
	var sheets []*manifest.Sheet
	var splits []*manifest.Split

	if len(o.Sheets) == 0 && len(o.Splits) == 0 {
		for i := range m.Sheets {
			sheets = append(sheets, &m.Sheets[i])
		}
		for i := range m.Splits {
			splits = append(splits, &m.Splits[i])
		}
		return sheets, splits, nil
	}

	for _, n := range o.Sheets {
		s, ok := m.FindSheet(n)
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no sheet named %q", n)
		}
		sheets = append(sheets, s)
	}
	for _, n := range o.Splits {
		s, ok := m.FindSplit(n)
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no split named %q", n)
		}
		splits = append(splits, s)
	}
	return sheets, splits, nil
}

// Artifact is one output file. Name is slash-separated and relative to the
// output directory.
type Artifact struct {
	Name string
	Data []byte
}

// SheetResult is a rendered sheet.
type SheetResult struct {
	Name     string
	Size     geom.Size
	Cells    int
	Artifact Artifact
	CacheHit bool
	Duration time.Duration
}

// SplitResult is a completed split job.
type SplitResult struct {
	Name      string
	Index     tiler.Index
	Artifacts []Artifact // tiles and masks followed by the index
	CacheHit  bool
	Duration  time.Duration
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	Sheets []*SheetResult
	Splits []*SplitResult

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which jobs hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells     int
	Tiles     int
	Bytes     int
	SheetTime time.Duration
	SplitTime time.Duration
}

// CacheInfo counts cache hits per job kind.
type CacheInfo struct {
	SheetHits int
	SplitHits int
}

// Artifacts returns every output of the run in job order.
func (r *Result) Artifacts() []Artifact {
	var out []Artifact
	for _, s := range r.Sheets {
		out = append(out, s.Artifact)
	}
	for _, s := range r.Splits {
		out = append(out, s.Artifacts...)
	}
	return out
}

func (s Stats) String() string {
	return fmt.Sprintf("%d cells, %d tiles, %d bytes", s.Cells, s.Tiles, s.Bytes)
}
