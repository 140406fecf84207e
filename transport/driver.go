package transport

// RadioDriver is the interface that wraps the basic radio operations.
//
// Rx returns every frame heard since the previous call, in no particular
// order. Tx broadcasts one frame; delivery is not guaranteed.
type RadioDriver interface {
	Rx() ([]uint64, error)
	Tx(frame uint64) error
}
