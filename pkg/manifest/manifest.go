// Package manifest reads boardtex build manifests.
//
// A manifest is a TOML file listing sheets (cell trees rendered to one
// image) and splits (large images cut into bled tiles):
//
//	[[sheet]]
//	name = "deck"
//	  [sheet.root]
//	  kind = "grid"
//	    [[sheet.root.children]]
//	    kind = "image"
//	    file = "cards/a.png"
//
//	[[split]]
//	name = "board"
//	source = "board.png"
//	chunk = 2032
//	gutter = 8
//
// File paths are relative to the manifest's directory and may not escape it.
package manifest

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

// Manifest is a parsed build manifest.
type Manifest struct {
	Sheets []Sheet `toml:"sheet" json:"sheets"`
	Splits []Split `toml:"split" json:"splits"`

	// Dir is the directory relative paths resolve against.
	Dir string `toml:"-" json:"-"`
}

// Sheet renders a cell tree to a single image.
type Sheet struct {
	Name   string `toml:"name" json:"name"`
	Output string `toml:"output" json:"output,omitempty"`
	Format string `toml:"format" json:"format,omitempty"`
	Root   Node   `toml:"root" json:"root"`
}

// Split cuts one image into tiles.
type Split struct {
	Name           string  `toml:"name" json:"name"`
	Source         string  `toml:"source" json:"source"`
	Mask           string  `toml:"mask" json:"mask,omitempty"`
	Chunk          int     `toml:"chunk" json:"chunk"`
	Gutter         int     `toml:"gutter" json:"gutter,omitempty"`
	AutoGutter     bool    `toml:"auto_gutter" json:"auto_gutter,omitempty"`
	MaxDimension   int     `toml:"max_dimension" json:"max_dimension,omitempty"`
	MaskMultiplier int     `toml:"mask_multiplier" json:"mask_multiplier,omitempty"`
	ObjectWidth    float64 `toml:"object_width" json:"object_width,omitempty"`
	ObjectHeight   float64 `toml:"object_height" json:"object_height,omitempty"`
	FillCorners    bool    `toml:"fill_corners" json:"fill_corners,omitempty"`
	Format         string  `toml:"format" json:"format,omitempty"`
	OutDir         string  `toml:"out_dir" json:"out_dir,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open manifest %s", path)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, err
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Decode parses and validates a manifest. Unknown keys are rejected.
// Dir is left empty, so relative paths resolve against the working directory.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names, paths and formats. Cell parameters are checked
// when a sheet is built.
func (m *Manifest) Validate() error {
	if len(m.Sheets) == 0 && len(m.Splits) == 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "manifest defines no sheets or splits")
	}
	seen := make(map[string]string)
	claim := func(kind, name string) error {
		if err := errors.ValidateAssetName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s name", kind)
		}
		if prev, ok := seen[name]; ok {
			return errors.New(errors.ErrCodeInvalidManifest, "%s %q: name already used by a %s", kind, name, prev)
		}
		seen[name] = kind
		return nil
	}

	for i := range m.Sheets {
		s := &m.Sheets[i]
		if err := claim("sheet", s.Name); err != nil {
			return err
		}
		if _, err := codec.ParseFormat(s.Format); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "sheet %q", s.Name)
		}
		if s.Output != "" {
			if err := errors.ValidatePath(s.Output); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "sheet %q output", s.Name)
			}
		}
		if err := s.Root.validatePaths("root"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "sheet %q", s.Name)
		}
	}

	for i := range m.Splits {
		s := &m.Splits[i]
		if err := claim("split", s.Name); err != nil {
			return err
		}
		if err := errors.ValidatePath(s.Source); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "split %q source", s.Name)
		}
		if s.Mask != "" {
			if err := errors.ValidatePath(s.Mask); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "split %q mask", s.Name)
			}
		}
		if s.OutDir != "" {
			if err := errors.ValidatePath(s.OutDir); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "split %q out_dir", s.Name)
			}
		}
		if _, err := codec.ParseFormat(s.Format); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "split %q", s.Name)
		}
		if (s.ObjectWidth == 0) != (s.ObjectHeight == 0) {
			return errors.New(errors.ErrCodeInvalidManifest, "split %q: object_width and object_height must be set together", s.Name)
		}
	}
	return nil
}

// FindSheet returns the sheet with the given name.
func (m *Manifest) FindSheet(name string) (*Sheet, bool) {
	for i := range m.Sheets {
		if m.Sheets[i].Name == name {
			return &m.Sheets[i], true
		}
	}
	return nil, false
}

// FindSplit returns the split with the given name.
func (m *Manifest) FindSplit(name string) (*Split, bool) {
	for i := range m.Splits {
		if m.Splits[i].Name == name {
			return &m.Splits[i], true
		}
	}
	return nil, false
}

// Resolve joins a manifest-relative path with Dir.
func (m *Manifest) Resolve(path string) string {
	if path == "" || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// OutputName returns the sheet's output file name, defaulting to the sheet
// name plus the format extension.
func (s *Sheet) OutputName() string {
	if s.Output != "" {
		return s.Output
	}
	f, _ := codec.ParseFormat(s.Format)
	return s.Name + f.Ext()
}

// EncodeFormat returns the sheet's output format.
func (s *Sheet) EncodeFormat() codec.Format {
	f, _ := codec.ParseFormat(s.Format)
	return f
}

// EncodeFormat returns the tile format.
func (s *Split) EncodeFormat() codec.Format {
	f, _ := codec.ParseFormat(s.Format)
	return f
}

// Options maps the split onto tiler options.
func (s *Split) Options() tiler.Options {
	opts := tiler.Options{
		ChunkSize:      s.Chunk,
		Gutter:         s.Gutter,
		AutoGutter:     s.AutoGutter,
		MaxDimension:   s.MaxDimension,
		BaseName:       s.Name,
		MaskMultiplier: s.MaskMultiplier,
		FillCorners:    s.FillCorners,
	}
	if s.ObjectWidth > 0 || s.ObjectHeight > 0 {
		opts.ObjectSize = &geom.SizeF{W: s.ObjectWidth, H: s.ObjectHeight}
	}
	return opts
}
