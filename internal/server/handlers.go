package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/chartmotion/pkg/buildinfo"
	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/pipeline"
	"github.com/matzehuels/chartmotion/pkg/render/sink"
	"github.com/matzehuels/chartmotion/pkg/scale"
	"github.com/matzehuels/chartmotion/pkg/session"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// =============================================================================
// Render
// =============================================================================

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, docFormat, err := readChart(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	frame, err := queryInt(r, "frame", 0)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	fps, err := queryInt(r, "fps", 0)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}

	q := r.URL.Query()
	res, err := s.cfg.Runner.Execute(r.Context(), pipeline.Options{
		Chart:       doc,
		ChartFormat: docFormat,
		Frame:       frame,
		Formats:     []string{format},
		Background:  q.Get("background"),
		ShowTitle:   q.Get("title") == "true",
		Font:        q.Get("font"),
		FPS:         fps,
		Refresh:     q.Get("refresh") == "true",
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Scene-Hash", res.SceneHash)
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// =============================================================================
// Stack
// =============================================================================

type stackResponse struct {
	Categories []any        `json:"categories"`
	Order      stack.Order  `json:"order"`
	Offset     stack.Offset `json:"offset"`
	Layers     []stackLayer `json:"layers"`
}

type stackLayer struct {
	Key      string         `json:"key"`
	Index    int            `json:"index"`
	Segments []stackSegment `json:"segments"`
}

type stackSegment struct {
	Category any      `json:"category"`
	Low      *float64 `json:"low"`
	High     *float64 `json:"high"`
	Value    *float64 `json:"value"`
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if !scale.Finite(v) {
		return nil
	}
	return &v
}

func newStackResponse(res *stack.Result[chart.Datum]) stackResponse {
	out := stackResponse{
		Categories: res.Categories,
		Order:      res.Order,
		Offset:     res.Offset,
		Layers:     make([]stackLayer, len(res.Layers)),
	}
	if out.Categories == nil {
		out.Categories = []any{}
	}
	for i, l := range res.Layers {
		sl := stackLayer{Key: l.Key, Index: l.Index, Segments: make([]stackSegment, len(l.Segments))}
		for j, seg := range l.Segments {
			sl.Segments[j] = stackSegment{
				Category: seg.Category,
				Low:      finite(seg.Low),
				High:     finite(seg.High),
				Value:    finite(seg.Value),
			}
		}
		out.Layers[i] = sl
	}
	return out
}

func (s *Server) handleStack(w http.ResponseWriter, r *http.Request) {
	doc, docFormat, err := readChart(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	frame, err := queryInt(r, "frame", 0)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	c, err := chart.Parse(doc, docFormat)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	q := r.URL.Query()
	if v := q.Get("order"); v != "" {
		if c.Stack.Order, err = stack.ParseOrder(v); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if c.Stack.Offset, err = stack.ParseOffset(v); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}

	res, err := c.StackFrame(frame)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newStackResponse(res))
}

// =============================================================================
// Sessions
// =============================================================================

type sessionResponse struct {
	ID        string    `json:"id"`
	Frame     int       `json:"frame"`
	Frames    int       `json:"frames"`
	ClockMS   float64   `json:"clock_ms"`
	Settled   bool      `json:"settled"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		Frame:     sess.Frame(),
		Frames:    sess.Chart.FrameCount(),
		ClockMS:   float64(sess.Clock()) / float64(time.Millisecond),
		Settled:   sess.Settled(),
		ExpiresAt: sess.ExpiresAt(),
	}
}

// session loads the session named by the id URL parameter, writing the
// error response when there is none.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.cfg.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return nil, false
	}
	return sess, true
}

// handleCreateSession starts a session that fades in the first frame at
// offset zero.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	doc, docFormat, err := readChart(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	sess, err := session.New(doc, docFormat, s.cfg.SessionTTL)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := sess.Show(0, 0); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.logger.Debug("created session", "id", sess.ID, "frames", sess.Chart.FrameCount())
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleShowFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	frame, err := strconv.Atoi(chi.URLParam(r, "frame"))
	if err != nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "frame must be an integer"))
		return
	}
	offset, err := queryOffset(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := sess.Show(frame, offset); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	offset, err := queryOffset(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if format != pipeline.FormatJSON && format != pipeline.FormatSVG {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidFormat, "advance renders svg or json, got %q", format))
		return
	}

	scene := sess.Advance(offset)
	s.persist(r, sess)
	var data []byte
	if format == pipeline.FormatSVG {
		data = sink.RenderSVG(scene)
	} else if data, err = sink.RenderJSON(scene); err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "render scene"))
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Settled", strconv.FormatBool(sess.Settled()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type nearestResponse struct {
	Found bool       `json:"found"`
	Hit   *chart.Hit `json:"hit,omitempty"`
}

// handleNearest takes canvas coordinates and reports the nearest datum of
// the frame being shown.
func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	x, err := queryFloat(r, "x")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	y, err := queryFloat(r, "y")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	h, found := sess.Nearest(geom.Point{X: x, Y: y})
	s.persist(r, sess)
	resp := nearestResponse{Found: found}
	if found {
		resp.Hit = &h
	}
	writeJSON(w, http.StatusOK, resp)
}

// persist stores a session after a read that refreshed its expiry. A failed
// write only shortens how long the session survives a restart, so the
// request still succeeds.
func (s *Server) persist(r *http.Request, sess *session.Session) {
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.logger.Warn("session not persisted", "id", sess.ID, "error", err)
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
