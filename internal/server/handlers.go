package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/boardtex/pkg/buildinfo"
	"github.com/matzehuels/boardtex/pkg/cache"
	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
	"github.com/matzehuels/boardtex/pkg/observability"
	"github.com/matzehuels/boardtex/pkg/pipeline"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type layoutResponse struct {
	cell.Layout
	Size     geom.Size `json:"size"`
	MaxCells int       `json:"max_cells"`
}

func (s *Server) gridLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := intParam(q, "count")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := sizeParams(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	layout, err := cell.OptimalLayout(count, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, _ := cell.MaxCellCount(size)
	writeJSON(w, http.StatusOK, layoutResponse{Layout: layout, Size: layout.Size(size), MaxCells: limit})
}

func (s *Server) gutter(w http.ResponseWriter, r *http.Request) {
	size, err := sizeParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch mode := chi.URLParam(r, "mode"); mode {
	case "inset":
		writeJSON(w, http.StatusOK, geom.InsetForUVs(size.W, size.H))
	case "outset":
		writeJSON(w, http.StatusOK, geom.OutsetForUVs(size.W, size.H))
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "mode must be inset or outset, got %q", mode))
	}
}

// SplitFile is one encoded tile or mask. Data is base64 in JSON.
type SplitFile struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// SplitResponse is the body returned by POST /v1/split.
type SplitResponse struct {
	Index tiler.Index `json:"index"`
	Files []SplitFile `json:"files"`
}

func (s *Server) split(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, format, err := splitParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error: "image exceeds " + strconv.FormatInt(s.maxBytes, 10) + " bytes",
				Code:  string(errors.ErrCodeInvalidInput),
			})
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeIO, err, "read body"))
		return
	}
	if len(body) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body must contain an image"))
		return
	}

	keyOpts := opts
	keyOpts.Concurrency = 0
	enc, _ := json.Marshal(keyOpts)
	key := s.keyer.SplitKey(opts.BaseName, cache.SplitKeyOpts{
		Source:  cache.Hash(body),
		Options: enc,
		Format:  string(format),
	})
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "split")
		w.Header().Set("X-Cache", "hit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "split")

	img, err := codec.Decode(bytes.NewReader(body))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "request body is not a supported image"))
		return
	}
	opts.Concurrency = s.workers
	res, err := tiler.Split(ctx, img, nil, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	arts, err := pipeline.EncodeTiles(ctx, res, format, "", s.workers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := SplitResponse{Index: res.Index(), Files: make([]SplitFile, len(arts))}
	for i, a := range arts {
		resp.Files[i] = SplitFile{Name: a.Name, Data: a.Data}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "split", len(data))
	}

	w.Header().Set("X-Cache", "miss")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func splitParams(q url.Values) (tiler.Options, codec.Format, error) {
	var opts tiler.Options
	var err error
	if opts.ChunkSize, err = intParam(q, "chunk"); err != nil {
		return opts, "", err
	}
	if opts.Gutter, err = intParam(q, "gutter"); err != nil {
		return opts, "", err
	}
	if opts.MaxDimension, err = intParam(q, "max_dimension"); err != nil {
		return opts, "", err
	}
	if opts.AutoGutter, err = boolParam(q, "auto_gutter"); err != nil {
		return opts, "", err
	}
	if opts.FillCorners, err = boolParam(q, "fill_corners"); err != nil {
		return opts, "", err
	}
	opts.BaseName = q.Get("name")

	ow, err := floatParam(q, "object_width")
	if err != nil {
		return opts, "", err
	}
	oh, err := floatParam(q, "object_height")
	if err != nil {
		return opts, "", err
	}
	if ow > 0 || oh > 0 {
		opts.ObjectSize = &geom.SizeF{W: ow, H: oh}
	}

	format, err := codec.ParseFormat(q.Get("format"))
	if err != nil {
		return opts, "", err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, "", err
	}
	return opts, format, nil
}

func sizeParams(q url.Values) (geom.Size, error) {
	w, err := intParam(q, "width")
	if err != nil {
		return geom.Size{}, err
	}
	h, err := intParam(q, "height")
	if err != nil {
		return geom.Size{}, err
	}
	size := geom.Size{W: w, H: h}
	if !size.Positive() {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidDimension, "width and height must be positive, got %s", size)
	}
	return size, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return f, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be true or false, got %q", name, v)
	}
	return b, nil
}
