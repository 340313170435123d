package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("request %s not found", "x")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("already submitted")))
	assert.Equal(t, KindValidation, KindOf(Validation("empty item list")))
	assert.Equal(t, KindConflict, KindOf(Conflict("version mismatch")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFound("asset missing")
	outer := fmt.Errorf("adding item: %w", inner)

	assert.True(t, IsNotFound(outer))
	assert.Equal(t, KindNotFound, KindOf(outer))
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindConflict, cause, "saving request %s", "DM-2026-00001")

	assert.True(t, IsConflict(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "saving request DM-2026-00001: connection refused", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("nope"), http.StatusNotFound},
		{Validation("bad"), http.StatusBadRequest},
		{InvalidState("not draft"), http.StatusConflict},
		{Conflict("stale"), http.StatusConflict},
		{fmt.Errorf("outer: %w", Validation("bad")), http.StatusBadRequest},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "for %v", tt.err)
	}
}
