package game

import "testing"

type saveCall struct {
	slot  SaveSlot
	count int
	year  float64
}

func TestSaveSchedulerFirstCheckFlagsAutoSlots(t *testing.T) {
	s := NewSaveScheduler()
	s.Check(0.001, 1, 1)

	if !s.Pending(SaveAutoImage) || !s.Pending(SaveAutoText) {
		t.Fatal("expected both auto slots pending after the first check")
	}
	if s.Pending(SaveManualImage) || s.Pending(SaveManualText) {
		t.Error("manual slots should not be flagged by Check")
	}

	var calls []saveCall
	n := s.Flush(0.001, func(slot SaveSlot, count int, year float64) {
		calls = append(calls, saveCall{slot, count, year})
	})
	if n != 2 || len(calls) != 2 {
		t.Fatalf("expected 2 flushed slots, got %d (%d calls)", n, len(calls))
	}
	if calls[0].slot != SaveAutoImage || calls[1].slot != SaveAutoText {
		t.Errorf("expected slot order auto_image, auto_text, got %v, %v", calls[0].slot, calls[1].slot)
	}
	if calls[0].count != 0 {
		t.Errorf("expected first save count 0, got %d", calls[0].count)
	}
	if s.Count(SaveAutoImage) != 1 {
		t.Errorf("expected count 1 after flush, got %d", s.Count(SaveAutoImage))
	}
}

func TestSaveSchedulerBucketPredicate(t *testing.T) {
	s := NewSaveScheduler()
	s.Check(0.5, 1, 1)
	s.Flush(0.5, nil)

	s.Check(0.9, 1, 1)
	if s.Pending(SaveAutoImage) {
		t.Error("same bucket should not flag a save")
	}

	s.Check(1.01, 1, 1)
	if !s.Pending(SaveAutoImage) {
		t.Error("crossing a bucket boundary should flag a save")
	}
}

func TestSaveSchedulerDisabledInterval(t *testing.T) {
	s := NewSaveScheduler()
	s.Check(3, 0, 1)
	if s.Pending(SaveAutoImage) {
		t.Error("zero interval should disable the slot")
	}
	if !s.Pending(SaveAutoText) {
		t.Error("text slot should still be flagged")
	}
}

func TestSaveSchedulerRequest(t *testing.T) {
	s := NewSaveScheduler()
	s.Request(SaveManualText)
	s.Request(SaveSlot(42))

	var got []SaveSlot
	s.Flush(2.5, func(slot SaveSlot, count int, year float64) {
		got = append(got, slot)
		if year != 2.5 {
			t.Errorf("expected year 2.5, got %f", year)
		}
	})
	if len(got) != 1 || got[0] != SaveManualText {
		t.Errorf("expected only manual_text, got %v", got)
	}
	if s.LastSave(SaveManualText) != 2.5 {
		t.Errorf("expected last save 2.5, got %f", s.LastSave(SaveManualText))
	}
}
