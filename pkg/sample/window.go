package sample

// Window is a fixed-capacity buffer of raw samples kept in ascending
// order. Each insert scans for the first bracketing slot, shifts the
// larger values up one position and drops the new value in, so the
// buffer is fully sorted after every insert. Capacity is set once at
// construction; inserting into a full window is a no-op.
type Window struct {
	values []uint16
}

// NewWindow creates an empty window with the given capacity.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{values: make([]uint16, 0, capacity)}
}

// Insert places v while keeping the window sorted. Equal values land at
// the first slot that brackets them.
func (w *Window) Insert(v uint16) {
	n := len(w.values)
	if n == cap(w.values) {
		return
	}

	j := 0
	if n > 0 && v >= w.values[0] {
		j = n
		for k := 1; k < n; k++ {
			if w.values[k-1] <= v && w.values[k] >= v {
				j = k
				break
			}
		}
	}

	w.values = w.values[:n+1]
	copy(w.values[j+1:], w.values[j:n])
	w.values[j] = v
}

// Reset empties the window without releasing its storage.
func (w *Window) Reset() {
	w.values = w.values[:0]
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	return len(w.values)
}

// Cap returns the window capacity.
func (w *Window) Cap() int {
	return cap(w.values)
}

// At returns the sample at sorted rank i.
func (w *Window) At(i int) uint16 {
	return w.values[i]
}
