package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(E(KindNotFound, "gone", nil)))
	assert.Equal(t, KindConflict, KindOf(E(KindConflict, "dup", errors.New("unique"))))

	// kind survives wrapping
	wrapped := fmt.Errorf("handler: %w", E(KindValidation, "bad field", nil))
	assert.Equal(t, KindValidation, KindOf(wrapped))

	// untagged errors report internal
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsNotFound(E(KindNotFound, "gone", nil)))
	assert.False(t, IsNotFound(E(KindConflict, "dup", nil)))
	assert.True(t, IsConflict(E(KindConflict, "dup", nil)))
	assert.False(t, IsConflict(errors.New("boom")))
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	err := E(KindConflict, "monster name already exists", cause)

	assert.Equal(t, "monster name already exists: UNIQUE constraint failed", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := E(KindNotFound, "monster not found", nil)
	assert.Equal(t, "monster not found", bare.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}
