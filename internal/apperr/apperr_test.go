package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsMatchByCode(t *testing.T) {
	detailed := ErrForbidden.With("order belongs to another shop")
	assert.ErrorIs(t, detailed, ErrForbidden)
	assert.NotErrorIs(t, detailed, ErrNotEligible)
	assert.Equal(t, "forbidden", ErrForbidden.Message, "With must not mutate the sentinel")

	wrapped := fmt.Errorf("cancel order: %w", ErrCancellationWindowExpired)
	assert.ErrorIs(t, wrapped, ErrCancellationWindowExpired)
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrUpstream.With("billing provider rejected the subscription").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "billing provider rejected the subscription: connection refused", err.Error())
	assert.Nil(t, ErrUpstream.Err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.Equal(t, KindValidation, KindOf(Validation("bad", map[string]string{"email": "email"})))
	assert.Equal(t, KindNotFound, KindOf(NotFound("shop")))
	assert.Equal(t, "shop not found", NotFound("shop").Message)
	assert.Equal(t, KindInvalidTransition, KindOf(InvalidTransition("pending", "delivered")))
	assert.Equal(t, "invalid_transition", KindInvalidTransition.String())
}
