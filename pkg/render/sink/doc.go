// Package sink serializes render scenes.
//
// # Formats
//
//   - [RenderSVG]: a standalone SVG document for one scene
//   - [RenderJSON]: the scene as JSON, with line paths pre-rendered
//   - [RenderFramesJSON]: a timed sequence of scenes for client playback
//
// SVG output is configured with functional options:
//
//	svg := sink.RenderSVG(scene, sink.WithBackground("#fff"), sink.WithTitle())
//
// Marks and ticks whose opacity is zero are omitted; partially transparent
// ones carry an opacity attribute.
package sink
