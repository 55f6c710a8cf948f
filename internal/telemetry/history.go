package telemetry

// History is a fixed-capacity circular buffer of altitude samples.
// Once full, each Push overwrites the oldest value.
type History struct {
	buf   []float64
	pos   int
	count int
}

// NewHistory creates a history holding at most capacity values.
// A capacity below one is raised to one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		buf: make([]float64, capacity),
	}
}

// Push appends a value, evicting the oldest one when the buffer is full.
func (h *History) Push(val float64) {
	h.buf[h.pos] = val
	h.pos = (h.pos + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Values returns a copy of the stored values, oldest first.
func (h *History) Values() []float64 {
	if h.count == 0 {
		return []float64{}
	}
	result := make([]float64, h.count)
	if h.count < len(h.buf) {
		copy(result, h.buf[:h.count])
	} else {
		n := copy(result, h.buf[h.pos:])
		copy(result[n:], h.buf[:h.pos])
	}
	return result
}

// Last returns the most recent value, or 0 if empty.
func (h *History) Last() float64 {
	if h.count == 0 {
		return 0
	}
	idx := (h.pos - 1 + len(h.buf)) % len(h.buf)
	return h.buf[idx]
}

// Len returns the number of stored values.
func (h *History) Len() int {
	return h.count
}

// Cap returns the fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}
