package repository

import (
	"crypto/rand"
	"math/big"
)

const (
	trackingPrefix      = "MRP-"
	trackingLength      = 7
	trackingAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxTrackingAttempts = 5
)

// GenerateTrackingNumber returns a candidate tracking number in the MRP-XXXXXXX format.
// Uniqueness is enforced by the caller.
func GenerateTrackingNumber() (string, error) {
	buf := make([]byte, trackingLength)
	max := big.NewInt(int64(len(trackingAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = trackingAlphabet[n.Int64()]
	}
	return trackingPrefix + string(buf), nil
}
