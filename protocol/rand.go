package protocol

import (
	crand "crypto/rand"
	mrand "math/rand"
	"time"
)

// GenerateRequestID returns a random 8-bit join request id.
// If crypto/rand fails (rare on host), falls back to math/rand.
// Invalid is never returned since it means "no approval" on the wire.
func GenerateRequestID() uint8 {
	var b [1]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			src := mrand.NewSource(time.Now().UnixNano())
			b[0] = byte(mrand.New(src).Intn(int(Invalid)))
		}
		if b[0] != Invalid {
			return b[0]
		}
	}
}
