package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidMark, "unknown mark: %q", "pie"), `INVALID_MARK: unknown mark: "pie"`},
		{"with cause", Wrap(ErrCodeInvalidChart, cause, "decode toml"), "INVALID_CHART: decode toml: unexpected EOF"},
		{"with field", &Error{Code: ErrCodeInvalidChart, Message: "negative size", Field: "series[0]"}, "INVALID_CHART: series[0]: negative size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "redis ping")

	if err.Code != ErrCodeNetwork || err.Message != "redis ping" {
		t.Errorf("Wrap() = %+v", err)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeInvalidScale, "empty domain"), ErrCodeInvalidScale, true},
		{"other code", New(ErrCodeInvalidScale, "empty domain"), ErrCodeNetwork, false},
		{"outermost code wins", Wrap(ErrCodeInvalidChart, New(ErrCodeInvalidScale, "inner"), "outer"), ErrCodeInvalidChart, true},
		{"through fmt wrapping", fmt.Errorf("frame 2: %w", New(ErrCodeInvalidInput, "bad")), ErrCodeInvalidInput, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeSessionExpired, "gone"), ErrCodeSessionExpired},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "frame 4 out of range")); got != "frame 4 out of range" {
		t.Errorf("UserMessage(coded) = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestAt(t *testing.T) {
	inner := New(ErrCodeInvalidChart, "bad colour")
	tests := []struct {
		name      string
		err       error
		wantField string
		wantCode  Code
	}{
		{"single", At(inner, "series[2]"), "series[2]", ErrCodeInvalidChart},
		{"nested", At(At(inner, "points[3]"), "series[1]"), "series[1].points[3]", ErrCodeInvalidChart},
		{"index joins without dot", At(At(inner, "[4]"), "frames"), "frames[4]", ErrCodeInvalidChart},
		{"plain error", At(errors.New("boom"), "x"), "x", ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Field(tt.err); got != tt.wantField {
				t.Errorf("Field() = %q, want %q", got, tt.wantField)
			}
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %v, want %v", got, tt.wantCode)
			}
		})
	}

	if At(nil, "x") != nil {
		t.Error("At(nil) should be nil")
	}
	if inner.Field != "" {
		t.Error("At must not modify its argument")
	}
	if Field(errors.New("plain")) != "" {
		t.Error("Field(plain) should be empty")
	}
}

func TestIsConfiguration(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unsupported scale", New(ErrCodeUnsupportedScale, "kind 9"), true},
		{"missing accessor", New(ErrCodeMissingAccessor, "value"), true},
		{"located accessor", At(New(ErrCodeMissingAccessor, "key"), "series[0]"), true},
		{"wrapped accessor", Wrap(ErrCodeInvalidChart, New(ErrCodeMissingAccessor, "key"), "build"), false},
		{"invalid input", New(ErrCodeInvalidInput, "bad"), false},
		{"plain", errors.New("plain"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.want {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"coded", New(ErrCodeTimeout, "render took too long"), true},
		{"deadline", fmt.Errorf("render: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"other code", New(ErrCodeNetwork, "redis down"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeout(tt.err); got != tt.want {
				t.Errorf("IsTimeout(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
