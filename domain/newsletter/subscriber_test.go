package newsletter

import (
	"testing"

	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscriber(t *testing.T) {
	s, err := NewSubscriber("s1", "  Reader@Example.COM ")
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", s.Email())
	assert.Len(t, s.ConfirmationToken(), 64)
	assert.Len(t, s.UnsubscribeToken(), 64)
	assert.NotEqual(t, s.ConfirmationToken(), s.UnsubscribeToken())
	assert.True(t, s.IsActive())
	assert.False(t, s.IsConfirmed())
	assert.False(t, s.IsDeliverable())
}

func TestNewSubscriberRejectsBadEmail(t *testing.T) {
	for _, email := range []string{"", "nobody", "a@b"} {
		_, err := NewSubscriber("s1", email)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, email)
	}
}

func TestSubscriberLifecycle(t *testing.T) {
	s, err := NewSubscriber("s1", "reader@example.com")
	require.NoError(t, err)

	require.NoError(t, s.Confirm())
	assert.Empty(t, s.ConfirmationToken())
	assert.True(t, s.IsDeliverable())
	assert.Equal(t, ReasonAlreadyConfirmed, shared.ReasonOf(s.Confirm()))

	assert.ErrorIs(t, s.Resubscribe(), shared.ErrConflict)

	require.NoError(t, s.Unsubscribe())
	assert.False(t, s.IsDeliverable())
	assert.Equal(t, ReasonAlreadyUnsubscribed, shared.ReasonOf(s.Unsubscribe()))

	require.NoError(t, s.Resubscribe())
	assert.True(t, s.IsDeliverable())
}
