package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hindsightlab/hindsight/internal/core"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"key": "value"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp SuccessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["key"] != "value" {
		t.Errorf("data = %v", resp.Data)
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("missing timestamp")
	}
}

func TestError_CoreError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, core.WrapError(core.ErrRunNotFound, errors.New("gone")))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != "RUN_NOT_FOUND" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if resp.Error.Cause != "gone" {
		t.Errorf("cause = %q", resp.Error.Cause)
	}
}

func TestError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusInternalServerError, errors.New("boom"))

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if resp.Error.Cause != "" {
		t.Errorf("cause should be hidden for plain errors, got %q", resp.Error.Cause)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrRunNotFound, http.StatusNotFound},
		{core.ErrJobNotFound, http.StatusNotFound},
		{core.ErrNoData, http.StatusBadRequest},
		{core.ErrInsufficientData, http.StatusBadRequest},
		{core.ErrInvalidSeries, http.StatusBadRequest},
		{core.ErrConfigInvalid, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
