package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/observability"
	"github.com/matzehuels/chartmotion/pkg/pipeline"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidChart, errors.ErrCodeInvalidScale,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidMark, errors.ErrCodeInvalidDimensions,
		errors.ErrCodeInvalidPath, errors.ErrCodeUnsupportedScale, errors.ErrCodeMissingAccessor:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSessionExpired:
		return http.StatusGone
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	switch {
	case code == "" && errors.IsTimeout(err):
		code, msg = errors.ErrCodeTimeout, "request timed out"
	case code == "":
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		msg = "internal error"
	} else if errors.IsConfiguration(err) {
		logger.Warn("chart configuration rejected", "code", code, "error", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg, Field: errors.Field(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

// readChart reads a chart document body and its format from Content-Type.
// Plain text, octet streams and curl's default form type leave the format
// to be sniffed; other types are refused.
func readChart(r *http.Request) ([]byte, string, error) {
	format := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "bad Content-Type")
		}
		switch {
		case strings.HasSuffix(mt, "json"):
			format = chart.FormatJSON
		case strings.HasSuffix(mt, "toml"):
			format = chart.FormatTOML
		case mt == "text/plain", mt == "application/octet-stream", mt == "application/x-www-form-urlencoded":
		default:
			return nil, "", errors.New(errors.ErrCodeUnsupported, "unsupported Content-Type %q (use json or toml)", mt)
		}
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, pipeline.MaxChartSize+1))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) == 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "request body must be a chart document")
	}
	if len(data) > pipeline.MaxChartSize {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "chart too large (max %d bytes)", pipeline.MaxChartSize)
	}
	return data, format, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s is required", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return f, nil
}

// queryOffset parses the t parameter, in milliseconds, as an offset.
func queryOffset(r *http.Request) (time.Duration, error) {
	v := r.URL.Query().Get("t")
	if v == "" {
		return 0, nil
	}
	ms, err := strconv.ParseFloat(v, 64)
	if err != nil || ms < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "t must be a non-negative number of milliseconds, got %q", v)
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	default:
		return "application/json"
	}
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		if status >= http.StatusInternalServerError {
			hooks.OnError(r.Context(), r.Method, r.URL.Path, fmt.Errorf("status %d", status))
		}
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
