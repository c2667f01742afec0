package game

import "math"

// SaveSlot identifies one of the four export slots.
type SaveSlot int

const (
	SaveManualImage SaveSlot = iota
	SaveAutoImage
	SaveManualText
	SaveAutoText

	numSaveSlots
)

// String returns the slot name used in logs and file names.
func (s SaveSlot) String() string {
	switch s {
	case SaveManualImage:
		return "manual_image"
	case SaveAutoImage:
		return "auto_image"
	case SaveManualText:
		return "manual_text"
	case SaveAutoText:
		return "auto_text"
	default:
		return "unknown"
	}
}

// IsImage reports whether the slot exports the tile map.
func (s SaveSlot) IsImage() bool {
	return s == SaveManualImage || s == SaveAutoImage
}

// Valid reports whether s names a slot.
func (s SaveSlot) Valid() bool {
	return s >= 0 && s < numSaveSlots
}

// SaveHook receives every flushed save. count is the slot's save number
// before this save, starting at 0.
type SaveHook func(slot SaveSlot, count int, year float64)

const (
	initialSaveTime = -999.0
	pendingSaveTime = -999999.0
	pendingCutoff   = -99999.0
)

// SaveScheduler decides when exports happen. It does no I/O itself.
type SaveScheduler struct {
	times  [numSaveSlots]float64
	counts [numSaveSlots]int
}

// NewSaveScheduler creates a scheduler with no saves made yet.
func NewSaveScheduler() *SaveScheduler {
	s := &SaveScheduler{}
	for i := range s.times {
		s.times[i] = initialSaveTime
	}
	return s
}

// Check flags the auto slots whose interval bucket differs from the one
// of their last save. A non-positive interval disables the slot.
func (s *SaveScheduler) Check(year, imageInterval, textInterval float64) {
	s.checkSlot(SaveAutoImage, year, imageInterval)
	s.checkSlot(SaveAutoText, year, textInterval)
}

func (s *SaveScheduler) checkSlot(slot SaveSlot, year, interval float64) {
	if interval <= 0 || s.Pending(slot) {
		return
	}
	if math.Floor(s.times[slot]/interval) != math.Floor(year/interval) {
		s.times[slot] = pendingSaveTime
	}
}

// Request flags a slot for the next flush.
func (s *SaveScheduler) Request(slot SaveSlot) {
	if !slot.Valid() {
		return
	}
	s.times[slot] = pendingSaveTime
}

// Pending reports whether a slot is flagged.
func (s *SaveScheduler) Pending(slot SaveSlot) bool {
	return s.times[slot] < pendingCutoff
}

// Flush calls hook for every flagged slot in slot order, stamps the save
// year and increments the count. A nil hook still stamps and counts.
// Returns the number of slots flushed.
func (s *SaveScheduler) Flush(year float64, hook SaveHook) int {
	n := 0
	for slot := SaveSlot(0); slot < numSaveSlots; slot++ {
		if !s.Pending(slot) {
			continue
		}
		s.times[slot] = year
		if hook != nil {
			hook(slot, s.counts[slot], year)
		}
		s.counts[slot]++
		n++
	}
	return n
}

// Count returns how many saves the slot has made.
func (s *SaveScheduler) Count(slot SaveSlot) int {
	if !slot.Valid() {
		return 0
	}
	return s.counts[slot]
}

// LastSave returns the year of the slot's last save.
func (s *SaveScheduler) LastSave(slot SaveSlot) float64 {
	return s.times[slot]
}
