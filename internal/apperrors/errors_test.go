package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(apperrors.NotFound("missing")))
	assert.Equal(t, apperrors.KindInvalidActor, apperrors.KindOf(apperrors.InvalidActor("nope")))
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(errors.New("plain")))
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperrors.InvalidMembership("already there"))
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidMembership))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("io failure")
	err := apperrors.Wrap(apperrors.KindInternal, "store read failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store read failed")
	assert.Contains(t, err.Error(), "io failure")
}
