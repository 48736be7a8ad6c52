package pipeline

import (
	"context"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/tiler"
)

// EncodeTiles encodes every tile of res, each followed by its mask when
// present. Names are placed under dir. At most limit tiles are encoded at
// once; limit <= 0 means no bound.
func EncodeTiles(ctx context.Context, res *tiler.Result, f codec.Format, dir string, limit int) ([]Artifact, error) {
	ext := f.Ext()
	perTile := make([][]Artifact, len(res.Tiles))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, t := range res.Tiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := codec.EncodeBytes(t.Image, f)
			if err != nil {
				return err
			}
			arts := []Artifact{{Name: path.Join(dir, t.Name+ext), Data: data}}
			if t.Mask != nil {
				m, err := codec.EncodeBytes(t.Mask, f)
				if err != nil {
					return err
				}
				arts = append(arts, Artifact{Name: path.Join(dir, t.MaskName+ext), Data: m})
			}
			perTile[i] = arts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Artifact, 0, len(res.Tiles)*2)
	for _, a := range perTile {
		out = append(out, a...)
	}
	return out, nil
}
