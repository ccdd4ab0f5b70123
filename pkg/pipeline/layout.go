package pipeline

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/observability"
	"github.com/matzehuels/chartmotion/pkg/render"
)

// BuildScene positions the marks and axes of one frame of c.
func BuildScene(ctx context.Context, c *chart.Chart, frame int) (render.Scene, error) {
	hooks := observability.Pipeline()
	hooks.OnSceneStart(ctx, string(c.Mark), frame)
	start := time.Now()

	s, err := c.Scene(frame)
	hooks.OnSceneComplete(ctx, string(c.Mark), len(s.Marks), time.Since(start), err)
	if err != nil {
		return render.Scene{}, err
	}
	return s, nil
}

// encodeScene serializes a scene for the cache. Gob keeps the fields the
// JSON encoding drops (curve, shape kinds).
func encodeScene(s render.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return buf.Bytes(), nil
}

func decodeScene(data []byte) (render.Scene, error) {
	var s render.Scene
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return render.Scene{}, errors.Wrap(errors.ErrCodeInternal, err, "decode scene")
	}
	return s, nil
}
