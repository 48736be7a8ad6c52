package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/boardtex/pkg/cache"
	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/manifest"
	"github.com/matzehuels/boardtex/pkg/observability"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

// Runner executes manifest jobs with caching.
//
// The Runner is stateless except for the cache, loader and logger; it
// doesn't store results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader *codec.Loader
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// A nil loader decodes every image from disk.
func NewRunner(c cache.Cache, keyer cache.Keyer, loader *codec.Loader, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Loader: loader,
		Logger: logger,
	}
}

// Execute runs the jobs of m selected by opts, sheets first.
func (r *Runner) Execute(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	sheets, splits, err := opts.Select(m)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	r.applyLogger(&opts)
	opts.Logger = opts.Logger.With("run_id", result.RunID)
	opts.Logger.Debug("starting run", "sheets", len(sheets), "splits", len(splits))

	for _, s := range sheets {
		sr, err := r.BuildSheet(ctx, m, s, opts)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		result.Sheets = append(result.Sheets, sr)
		result.Stats.Cells += sr.Cells
		result.Stats.Bytes += len(sr.Artifact.Data)
		result.Stats.SheetTime += sr.Duration
		if sr.CacheHit {
			result.CacheInfo.SheetHits++
		}
	}

	for _, s := range splits {
		sr, err := r.Split(ctx, m, s, opts)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", s.Name, err)
		}
		result.Splits = append(result.Splits, sr)
		result.Stats.Tiles += len(sr.Index.Tiles)
		for _, a := range sr.Artifacts {
			result.Stats.Bytes += len(a.Data)
		}
		result.Stats.SplitTime += sr.Duration
		if sr.CacheHit {
			result.CacheInfo.SplitHits++
		}
	}

	return result, nil
}

// BuildSheet builds, renders and encodes one sheet.
func (r *Runner) BuildSheet(ctx context.Context, m *manifest.Manifest, s *manifest.Sheet, opts Options) (res *SheetResult, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnSheetStart(ctx, s.Name)
	cells := 0
	defer func() {
		hooks.OnSheetComplete(ctx, s.Name, cells, time.Since(start), err)
	}()

	root, err := m.Build(s, r.Loader)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	cells = cell.Count(root)

	key, err := r.sheetKey(m, s)
	if err != nil {
		return nil, err
	}
	res = &SheetResult{Name: s.Name, Size: root.Size(), Cells: cells}
	res.Artifact.Name = s.OutputName()

	if data, hit := r.lookup(ctx, key, "sheet", opts); hit {
		res.Artifact.Data = data
		res.CacheHit = true
		res.Duration = time.Since(start)
		opts.Logger.Info("sheet cached", "sheet", s.Name, "size", res.Size, "duration", res.Duration)
		return res, nil
	}

	img, err := root.Render(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	data, err := codec.EncodeBytes(img, s.EncodeFormat())
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	r.store(ctx, key, "sheet", data, opts)

	res.Artifact.Data = data
	res.Duration = time.Since(start)
	opts.Logger.Info("rendered sheet",
		"sheet", s.Name,
		"size", res.Size,
		"cells", cells,
		"duration", res.Duration)
	return res, nil
}

// Split cuts the split's source into tiles, encodes them and builds the
// placement index. The index and every tile are cached; a hit needs all of
// them.
func (r *Runner) Split(ctx context.Context, m *manifest.Manifest, s *manifest.Split, opts Options) (res *SplitResult, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	hooks := observability.Pipeline()
	tiles := 0
	started := false
	defer func() {
		if started {
			hooks.OnSplitComplete(ctx, s.Name, tiles, time.Since(start), err)
		}
	}()

	topts := s.Options()
	topts.Concurrency = opts.Concurrency
	if err := topts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	src, mask := m.Resolve(s.Source), m.Resolve(s.Mask)

	key, err := r.splitKey(s, src, mask, topts)
	if err != nil {
		return nil, err
	}

	if cached, ok := r.cachedSplit(ctx, key, s, opts); ok {
		tiles = len(cached.Index.Tiles)
		hooks.OnSplitStart(ctx, s.Name, tiles)
		started = true
		cached.Duration = time.Since(start)
		opts.Logger.Info("split cached", "split", s.Name, "tiles", tiles, "duration", cached.Duration)
		return cached, nil
	}

	size, err := codec.DecodeConfig(src)
	if err != nil {
		return nil, err
	}
	grid, err := tiler.Plan(size.W, size.H, topts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	hooks.OnSplitStart(ctx, s.Name, len(grid.Chunks))
	started = true
	opts.Logger.Debug("planned split", "split", s.Name, "size", grid.Size, "cols", grid.Cols, "rows", grid.Rows)

	tr, err := tiler.SplitFile(ctx, r.Loader, src, mask, topts)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	tiles = len(tr.Tiles)

	arts, err := EncodeTiles(ctx, tr, s.EncodeFormat(), s.OutDir, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	index, err := tr.Manifest()
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	for _, a := range arts {
		r.store(ctx, r.Keyer.ArtifactKey(key, a.Name), "tile", a.Data, opts)
	}
	r.store(ctx, key, "split", index, opts)

	res = &SplitResult{
		Name:      s.Name,
		Index:     tr.Index(),
		Artifacts: append(arts, Artifact{Name: indexName(s), Data: index}),
		Duration:  time.Since(start),
	}
	opts.Logger.Info("split image",
		"split", s.Name,
		"size", tr.Size,
		"chunks", tiles,
		"duration", res.Duration)
	return res, nil
}

// cachedSplit reassembles a split from the cache.
func (r *Runner) cachedSplit(ctx context.Context, key string, s *manifest.Split, opts Options) (*SplitResult, bool) {
	data, hit := r.lookup(ctx, key, "split", opts)
	if !hit {
		return nil, false
	}
	var idx tiler.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, false
	}

	ext := s.EncodeFormat().Ext()
	var arts []Artifact
	for _, e := range idx.Tiles {
		names := []string{path.Join(s.OutDir, e.Name+ext)}
		if e.Mask != "" {
			names = append(names, path.Join(s.OutDir, e.Mask+ext))
		}
		for _, n := range names {
			b, ok := r.lookup(ctx, r.Keyer.ArtifactKey(key, n), "tile", opts)
			if !ok {
				return nil, false
			}
			arts = append(arts, Artifact{Name: n, Data: b})
		}
	}
	arts = append(arts, Artifact{Name: indexName(s), Data: data})
	return &SplitResult{Name: s.Name, Index: idx, Artifacts: arts, CacheHit: true}, true
}

func (r *Runner) sheetKey(m *manifest.Manifest, s *manifest.Sheet) (string, error) {
	tree, err := json.Marshal(s.Root)
	if err != nil {
		return "", fmt.Errorf("serialize tree for cache key: %w", err)
	}
	files := s.Root.Files()
	stamps := make([]string, len(files))
	for i, f := range files {
		if stamps[i], err = codec.Stamp(m.Resolve(f)); err != nil {
			return "", err
		}
	}
	return r.Keyer.SheetKey(s.Name, cache.SheetKeyOpts{
		Tree:    tree,
		Sources: stamps,
		Format:  string(s.EncodeFormat()),
	}), nil
}

func (r *Runner) splitKey(s *manifest.Split, src, mask string, topts tiler.Options) (string, error) {
	srcStamp, err := codec.Stamp(src)
	if err != nil {
		return "", err
	}
	var maskStamp string
	if mask != "" {
		if maskStamp, err = codec.Stamp(mask); err != nil {
			return "", err
		}
	}
	topts.Concurrency = 0
	enc, err := json.Marshal(topts)
	if err != nil {
		return "", fmt.Errorf("serialize options for cache key: %w", err)
	}
	return r.Keyer.SplitKey(s.Name, cache.SplitKeyOpts{
		Source:  srcStamp,
		Mask:    maskStamp,
		Options: enc,
		Format:  string(s.EncodeFormat()),
	}), nil
}

// lookup reads key unless opts.Refresh is set. Backend errors count as
// misses.
func (r *Runner) lookup(ctx context.Context, key, kind string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "key", key, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
	} else {
		observability.Cache().OnCacheMiss(ctx, kind)
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, key, kind string, data []byte, opts Options) {
	if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.Loader != nil {
		r.Loader.Close()
	}
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func indexName(s *manifest.Split) string {
	return path.Join(s.OutDir, s.Name+IndexExt)
}
