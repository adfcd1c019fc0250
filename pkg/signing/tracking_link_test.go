package signing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingLinkSignAndVerify(t *testing.T) {
	signer := NewTrackingLinkSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("MRP-AB12CD3")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	number, parsedExpiry, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "MRP-AB12CD3", number)
	assert.True(t, expiresAt.Equal(parsedExpiry))
}

func TestTrackingLinkExpired(t *testing.T) {
	signer := NewTrackingLinkSigner("secret", time.Hour)
	clock := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return clock }
	token, _, err := signer.Sign("MRP-AB12CD3")
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, _, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTrackingLinkRejectsTampering(t *testing.T) {
	signer := NewTrackingLinkSigner("secret", time.Hour)
	token, _, err := signer.Sign("MRP-AB12CD3")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[1] = "9999999999"
	_, _, err = signer.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrBadSignature)

	other := NewTrackingLinkSigner("other", time.Hour)
	_, _, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, _, err = signer.Verify("garbage")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestTrackingLinkRequiresSecret(t *testing.T) {
	_, _, err := NewTrackingLinkSigner("", time.Hour).Sign("MRP-AB12CD3")
	assert.Error(t, err)
}
