package game

// History is a fixed-length record of population counts, newest first.
type History struct {
	values []int
}

// NewHistory creates a zeroed history of the given length.
func NewHistory(length int) *History {
	if length < 1 {
		length = 1
	}
	return &History{values: make([]int, length)}
}

// Push shifts every entry one slot older and stores n as the newest.
func (h *History) Push(n int) {
	copy(h.values[1:], h.values[:len(h.values)-1])
	h.values[0] = n
}

// Len returns the fixed length.
func (h *History) Len() int { return len(h.values) }

// Values returns a copy of the history, newest first.
func (h *History) Values() []int {
	out := make([]int, len(h.values))
	copy(out, h.values)
	return out
}

// Bars returns each entry divided by the maximum entry. An all-zero
// history yields all zeros.
func (h *History) Bars() []float64 {
	max := 0
	for _, v := range h.values {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(h.values))
	if max == 0 {
		return out
	}
	for i, v := range h.values {
		out[i] = float64(v) / float64(max)
	}
	return out
}
