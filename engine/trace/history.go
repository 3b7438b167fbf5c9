package trace

// History is a bounded ring of adaptation records. Once the window is full
// the oldest record is dropped on append; the window never grows.
type History struct {
	window  int
	records []AdaptationRecord
	start   int
	count   int
}

// DefaultWindow matches the pruning depth the reporting layer expects.
const DefaultWindow = 10

// NewHistory creates a History holding at most window records. A
// non-positive window falls back to DefaultWindow.
func NewHistory(window int) *History {
	if window <= 0 {
		window = DefaultWindow
	}
	return &History{
		window:  window,
		records: make([]AdaptationRecord, window),
	}
}

// Append adds a record, evicting the oldest when the window is full.
func (h *History) Append(r AdaptationRecord) {
	idx := (h.start + h.count) % h.window
	h.records[idx] = r
	if h.count < h.window {
		h.count++
	} else {
		h.start = (h.start + 1) % h.window
	}
}

// Len returns the number of records currently held.
func (h *History) Len() int { return h.count }

// Window returns the configured capacity.
func (h *History) Window() int { return h.window }

// Last returns the most recent n records, oldest first. Returns fewer when
// the history holds fewer.
func (h *History) Last(n int) []AdaptationRecord {
	if n > h.count {
		n = h.count
	}
	out := make([]AdaptationRecord, 0, n)
	for i := h.count - n; i < h.count; i++ {
		out = append(out, h.records[(h.start+i)%h.window])
	}
	return out
}

// All returns every held record, oldest first.
func (h *History) All() []AdaptationRecord {
	return h.Last(h.count)
}
