// Package stub provides an in-memory broadcast medium for host-side testing
// and simulation. Frames transmitted during a tick are in flight until the
// driving loop calls Ether.Flush; after that every other attached driver
// hears them on its next Rx.
package stub

import (
	"log"
	"math/rand"
	"sync"

	"github.com/ystepanoff/fleetlink/transport"
)

// Ether is the shared medium.
type Ether struct {
	mu      sync.Mutex
	drivers []*Driver
	loss    float64
	rng     *rand.Rand
	lost    uint64
}

func NewEther() *Ether { return &Ether{rng: rand.New(rand.NewSource(1))} }

// SetLoss drops each delivery independently with probability p, using a
// seeded source so runs are reproducible.
func (e *Ether) SetLoss(p float64, seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loss = p
	e.rng = rand.New(rand.NewSource(seed))
}

// Lost reports how many deliveries were dropped.
func (e *Ether) Lost() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lost
}

// Attach connects a new driver to the medium.
func (e *Ether) Attach() *Driver {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := &Driver{ether: e}
	e.drivers = append(e.drivers, d)
	return d
}

// Detach takes d out of range. Frames already in flight to it are lost.
func (e *Ether) Detach(d *Driver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, other := range e.drivers {
		if other == d {
			d.inflight = nil
			e.drivers = append(e.drivers[:i], e.drivers[i+1:]...)
			return
		}
	}
}

func (e *Ether) broadcast(from *Driver, frame uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	from.txBuf.push(frame)
	for _, d := range e.drivers {
		if d == from {
			continue
		}
		d.inflight = append(d.inflight, frame)
	}
}

// Flush ends the tick: every frame in flight reaches its receivers, subject
// to loss.
func (e *Ether) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.drivers {
		for _, frame := range d.inflight {
			if e.loss > 0 && e.rng.Float64() < e.loss {
				e.lost++
				continue
			}
			d.rxBuf.push(frame)
		}
		d.inflight = d.inflight[:0]
	}
}

// Driver implements a mock radio driver for host-side testing
type Driver struct {
	ether    *Ether
	inflight []uint64
	rxBuf    ringBuffer
	txBuf    ringBuffer
}

var _ transport.RadioDriver = (*Driver)(nil)

// New returns a driver on a private ether of its own.
func New() *Driver { return NewEther().Attach() }

func (d *Driver) Tx(frame uint64) error {
	d.ether.broadcast(d, frame)
	return nil
}

func (d *Driver) Rx() ([]uint64, error) {
	d.ether.mu.Lock()
	defer d.ether.mu.Unlock()
	out := make([]uint64, 0, d.rxBuf.count)
	for {
		frame, ok := d.rxBuf.pop()
		if !ok {
			return out, nil
		}
		out = append(out, frame)
	}
}

// InjectRx queues frames as if they had been heard on the air. They are
// visible to the next Rx without a Flush.
func (d *Driver) InjectRx(frames ...uint64) {
	d.ether.mu.Lock()
	defer d.ether.mu.Unlock()
	for _, f := range frames {
		d.rxBuf.push(f)
	}
}

// GetTxLog returns the most recent frames this driver transmitted.
func (d *Driver) GetTxLog() []uint64 {
	d.ether.mu.Lock()
	defer d.ether.mu.Unlock()
	return d.txBuf.snapshot()
}

func (d *Driver) ClearTxLog() {
	d.ether.mu.Lock()
	defer d.ether.mu.Unlock()
	d.txBuf = ringBuffer{}
}

const ringCapacity = 256

type ringBuffer struct {
	data       [ringCapacity]uint64
	head, tail int // head = next pop, tail = next push
	count      int
	overwrites uint64
}

func (rb *ringBuffer) push(frame uint64) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
		rb.overwrites++
		if rb.overwrites == 1 {
			log.Printf("[Ether] ring buffer full, overwriting oldest frames")
		}
	}
	rb.data[rb.tail] = frame
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() (uint64, bool) {
	if rb.count == 0 {
		return 0, false
	}
	frame := rb.data[rb.head]
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return frame, true
}

func (rb *ringBuffer) snapshot() []uint64 {
	out := make([]uint64, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		out[c] = rb.data[i]
		i = (i + 1) % ringCapacity
	}
	return out
}
