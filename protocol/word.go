package protocol

// Word is a 64-bit frame with independent write and read cursors.
// Fields are packed LSB first: the first field written occupies the lowest bits.
type Word struct {
	Value uint64

	wpos uint
	rpos uint
}

// NewWord wraps a received frame for reading.
func NewWord(v uint64) *Word { return &Word{Value: v} }

func mask(width uint) uint64 {
	// Shifting by 64 yields 0, so a full-width mask is all ones.
	return (uint64(1) << width) - 1
}

// Get returns width bits starting at bit start without moving a cursor.
func (w *Word) Get(start, width uint) uint64 {
	return (w.Value >> start) & mask(width)
}

// Set overwrites width bits starting at bit start. Excess bits of v are discarded.
func (w *Word) Set(start, width uint, v uint64) {
	m := mask(width)
	w.Value &^= m << start
	w.Value |= (v & m) << start
}

// Write packs v into the next width bits and advances the write cursor.
func (w *Word) Write(v uint64, width uint) error {
	if w.wpos+width > FrameBits {
		return ErrOverflow
	}
	w.Set(w.wpos, width, v)
	w.wpos += width
	return nil
}

// Read extracts the next width bits and advances the read cursor.
func (w *Word) Read(width uint) (uint64, error) {
	if w.rpos+width > FrameBits {
		return 0, ErrOverflow
	}
	v := w.Get(w.rpos, width)
	w.rpos += width
	return v, nil
}

// Written reports the number of bits written so far.
func (w *Word) Written() uint { return w.wpos }

// cursor wraps a Word with a sticky error so message layouts read as a flat
// list of fields. After the first failure every call is a no-op.
type cursor struct {
	w   *Word
	err error
}

func (c *cursor) put(v uint64, width uint) {
	if c.err != nil {
		return
	}
	c.err = c.w.Write(v, width)
}

func (c *cursor) take(width uint) uint64 {
	if c.err != nil {
		return 0
	}
	v, err := c.w.Read(width)
	c.err = err
	return v
}
