package sink

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/render"
)

type jsonScene struct {
	render.Scene
	Curve string     `json:"curve,omitempty"`
	Marks []jsonMark `json:"marks"`
}

type jsonMark struct {
	render.Mark
	// Path is the rendered path of line marks.
	Path string `json:"path,omitempty"`
}

// RenderJSON encodes s with line paths rendered using the scene's curve.
func RenderJSON(s render.Scene) ([]byte, error) {
	return json.MarshalIndent(toJSON(s), "", "  ")
}

func toJSON(s render.Scene) jsonScene {
	out := jsonScene{Scene: s, Marks: make([]jsonMark, 0, len(s.Marks))}
	if s.Curve != geom.CurveLinear {
		out.Curve = s.Curve.String()
	}
	for _, m := range s.Marks {
		jm := jsonMark{Mark: m}
		if m.Shape.Kind == geom.ShapeLine {
			jm.Path = m.Shape.Line.Path(s.Curve)
		}
		out.Marks = append(out.Marks, jm)
	}
	return out
}

// Frame is one timed scene of an animation.
type Frame struct {
	At    time.Duration
	Scene render.Scene
}

type jsonFrame struct {
	AtMS  float64   `json:"at_ms"`
	Scene jsonScene `json:"scene"`
}

type jsonFrames struct {
	FPS    int         `json:"fps"`
	Count  int         `json:"count"`
	Frames []jsonFrame `json:"frames"`
}

// RenderFramesJSON encodes an animation as a frame list sampled at fps.
func RenderFramesJSON(frames []Frame, fps int) ([]byte, error) {
	out := jsonFrames{FPS: fps, Count: len(frames), Frames: make([]jsonFrame, len(frames))}
	for i, f := range frames {
		out.Frames[i] = jsonFrame{
			AtMS:  float64(f.At) / float64(time.Millisecond),
			Scene: toJSON(f.Scene),
		}
	}
	return json.Marshal(out)
}
