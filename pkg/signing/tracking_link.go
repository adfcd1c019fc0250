package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedToken is returned for tokens that do not decode.
	ErrMalformedToken = errors.New("malformed tracking token")
	// ErrBadSignature is returned when the HMAC does not match.
	ErrBadSignature = errors.New("invalid tracking token signature")
	// ErrExpiredToken is returned once the embedded expiry has passed.
	ErrExpiredToken = errors.New("tracking token expired")
)

// TrackingLinkSigner issues HMAC-SHA256 signed tokens that let anonymous
// recipients look up a single parcel by its tracking number.
//
// Token layout: base64url(trackingNumber) "." expiryUnix "." hex(hmac).
type TrackingLinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTrackingLinkSigner constructs a signer. A non-positive ttl defaults to 72h.
func NewTrackingLinkSigner(secret string, ttl time.Duration) *TrackingLinkSigner {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &TrackingLinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for the tracking number and its expiry.
func (s *TrackingLinkSigner) Sign(trackingNumber string) (string, time.Time, error) {
	if trackingNumber == "" {
		return "", time.Time{}, fmt.Errorf("tracking number required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(trackingNumber))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	return strings.Join([]string{encoded, ts, s.mac(encoded, ts)}, "."), expiresAt, nil
}

// Verify checks the signature and expiry and returns the tracking number.
func (s *TrackingLinkSigner) Verify(token string) (string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", time.Time{}, ErrMalformedToken
	}
	encoded, ts, signature := parts[0], parts[1], parts[2]

	if !hmac.Equal([]byte(s.mac(encoded, ts)), []byte(signature)) {
		return "", time.Time{}, ErrBadSignature
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", time.Time{}, ErrMalformedToken
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", time.Time{}, ErrMalformedToken
	}
	expiresAt := time.Unix(unix, 0).UTC()
	if !s.now().Before(expiresAt) {
		return "", expiresAt, ErrExpiredToken
	}
	return string(raw), expiresAt, nil
}

func (s *TrackingLinkSigner) mac(encoded, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded + "|" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
