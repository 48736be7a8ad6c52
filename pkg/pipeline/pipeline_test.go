package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/boardtex/pkg/cache"
	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
	"github.com/matzehuels/boardtex/pkg/manifest"
	"github.com/matzehuels/boardtex/pkg/observability"
)

const testManifest = `
[[sheet]]
name = "strip"

  [sheet.root]
  kind = "row"
  spacing = 2

    [[sheet.root.children]]
    kind = "image"
    file = "card.png"
    width = 4
    height = 4

    [[sheet.root.children]]
    kind = "solid"
    width = 4
    height = 4
    color = "#0000ff"

[[split]]
name = "board"
source = "board.png"
mask = "mask.png"
chunk = 32
gutter = 2
mask_multiplier = 2
out_dir = "tiles"
`

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	data, err := codec.EncodeBytes(codec.Fill(w, h, c), codec.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func setup(t *testing.T) (*manifest.Manifest, string) {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "card.png"), 4, 4, color.NRGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "board.png"), 64, 32, color.NRGBA{G: 255, A: 255})
	writePNG(t, filepath.Join(dir, "mask.png"), 32, 16, color.NRGBA{R: 9, G: 9, B: 9, A: 255})

	m, err := manifest.Decode(strings.NewReader(testManifest))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m.Dir = dir
	return m, dir
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil, nil)
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner left nil fields: %+v", r)
	}
	if r.Loader != nil {
		t.Error("Loader should stay nil")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"names", Options{Sheets: []string{"a"}, Splits: []string{"b"}}, false},
		{"bad name", Options{Sheets: []string{"../x"}}, true},
		{"negative concurrency", Options{Concurrency: -1}, true},
		{"negative ttl", Options{TTL: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (tt.opts.Concurrency <= 0 || tt.opts.TTL != DefaultTTL) {
				t.Errorf("defaults not applied: %+v", tt.opts)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	m, _ := setup(t)

	sheets, splits, err := (&Options{}).Select(m)
	if err != nil || len(sheets) != 1 || len(splits) != 1 {
		t.Fatalf("Select all = %d sheets, %d splits, %v", len(sheets), len(splits), err)
	}

	sheets, splits, err = (&Options{Splits: []string{"board"}}).Select(m)
	if err != nil || len(sheets) != 0 || len(splits) != 1 {
		t.Fatalf("Select board = %d sheets, %d splits, %v", len(sheets), len(splits), err)
	}

	_, _, err = (&Options{Sheets: []string{"nope"}}).Select(m)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown sheet: err = %v, want INVALID_INPUT", err)
	}
}

func TestExecute(t *testing.T) {
	m, _ := setup(t)
	r := newRunner(t)
	ctx := context.Background()

	res, err := r.Execute(ctx, m, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(res.Sheets) != 1 || len(res.Splits) != 1 {
		t.Fatalf("got %d sheets, %d splits", len(res.Sheets), len(res.Splits))
	}

	sheet := res.Sheets[0]
	if want := (geom.Size{W: 10, H: 4}); sheet.Size != want {
		t.Errorf("sheet size = %v, want %v", sheet.Size, want)
	}
	if sheet.Cells != 3 || sheet.Artifact.Name != "strip.png" {
		t.Errorf("sheet = %d cells, %q", sheet.Cells, sheet.Artifact.Name)
	}
	img, err := codec.Decode(bytes.NewReader(sheet.Artifact.Data))
	if err != nil {
		t.Fatalf("decode sheet: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got.R != 255 || got.B != 0 {
		t.Errorf("pixel (0,0) = %v, want red", got)
	}
	if got := img.NRGBAAt(7, 0); got.B != 255 {
		t.Errorf("pixel (7,0) = %v, want blue", got)
	}

	split := res.Splits[0]
	var names []string
	for _, a := range split.Artifacts {
		names = append(names, a.Name)
	}
	want := []string{
		"tiles/board-0x0.png", "tiles/board-mask-0x0.png",
		"tiles/board-1x0.png", "tiles/board-mask-1x0.png",
		"tiles/board.json",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("split artifacts = %v, want %v", names, want)
	}
	if res.Stats.Tiles != 2 || res.Stats.Cells != 3 {
		t.Errorf("stats = %v", res.Stats)
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run hit the cache: %+v", res.CacheInfo)
	}

	tile, err := codec.Decode(bytes.NewReader(split.Artifacts[0].Data))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := codec.Size(tile), (geom.Size{W: 36, H: 36}); got != want {
		t.Errorf("tile size = %v, want %v", got, want)
	}
}

func TestExecuteCache(t *testing.T) {
	m, dir := setup(t)
	r := newRunner(t)
	ctx := context.Background()

	first, err := r.Execute(ctx, m, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, m, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := (CacheInfo{SheetHits: 1, SplitHits: 1}); second.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v, want %+v", second.CacheInfo, want)
	}
	if first.RunID == second.RunID {
		t.Error("RunID reused across runs")
	}
	a, b := first.Artifacts(), second.Artifacts()
	if len(a) != len(b) {
		t.Fatalf("artifact count %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || string(a[i].Data) != string(b[i].Data) {
			t.Errorf("artifact %d differs: %q vs %q", i, a[i].Name, b[i].Name)
		}
	}

	refreshed, err := r.Execute(ctx, m, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh hit the cache: %+v", refreshed.CacheInfo)
	}

	// A source edit changes its stamp.
	writePNG(t, filepath.Join(dir, "card.png"), 8, 8, color.NRGBA{B: 255, A: 255})
	edited, err := r.Execute(ctx, m, Options{Sheets: []string{"strip"}})
	if err != nil {
		t.Fatal(err)
	}
	if edited.CacheInfo.SheetHits != 0 {
		t.Error("edited source still hit the cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	m, dir := setup(t)
	r := newRunner(t)
	ctx := context.Background()

	if err := os.Remove(filepath.Join(dir, "board.png")); err != nil {
		t.Fatal(err)
	}
	_, err := r.Execute(ctx, m, Options{Splits: []string{"board"}})
	if !errors.IsNotFound(err) {
		t.Errorf("missing source: err = %v, want FILE_NOT_FOUND", err)
	}

	_, err = r.Execute(ctx, m, Options{Splits: []string{"other"}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown split: err = %v, want INVALID_INPUT", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
	starts []string
}

func (h *recordingHooks) OnSplitStart(_ context.Context, split string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, "split:"+split)
}

func (h *recordingHooks) OnSheetComplete(_ context.Context, sheet string, cells int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "sheet:"+sheet)
}

func (h *recordingHooks) OnSplitComplete(_ context.Context, split string, tiles int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "split:"+split)
}

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	m, _ := setup(t)
	if _, err := newRunner(t).Execute(context.Background(), m, Options{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(h.events, ","); got != "sheet:strip,split:board" {
		t.Errorf("events = %q", got)
	}
}

func TestSplitHooksPaired(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, dir string)
		runs    int
		wantErr bool
		want    int
	}{
		{"fresh", nil, 1, false, 1},
		{"cached", nil, 2, false, 2},
		{"missing source", func(t *testing.T, dir string) {
			if err := os.Remove(filepath.Join(dir, "board.png")); err != nil {
				t.Fatal(err)
			}
		}, 1, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHooks{}
			observability.SetPipelineHooks(h)
			t.Cleanup(observability.Reset)

			m, dir := setup(t)
			if tt.prepare != nil {
				tt.prepare(t, dir)
			}
			s, _ := m.FindSplit("board")
			r := newRunner(t)
			for range tt.runs {
				_, err := r.Split(context.Background(), m, s, Options{})
				if (err != nil) != tt.wantErr {
					t.Fatalf("Split err = %v, wantErr %v", err, tt.wantErr)
				}
			}
			if len(h.starts) != tt.want || len(h.events) != tt.want {
				t.Errorf("starts = %v, completes = %v, want %d of each", h.starts, h.events, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	m, _ := setup(t)
	res, err := newRunner(t).Execute(context.Background(), m, Options{})
	if err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	paths, err := WriteArtifacts(out, res)
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	if len(paths) != 6 {
		t.Fatalf("wrote %d files, want 6", len(paths))
	}
	for _, rel := range []string{"strip.png", "tiles/board-1x0.png", "tiles/board.json"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s: %v", rel, err)
		}
	}

	_, err = WriteFiles(out, []Artifact{{Name: "../escape.png"}})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("escaping name: err = %v, want INVALID_PATH", err)
	}
}
