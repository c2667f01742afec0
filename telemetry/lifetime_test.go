package telemetry

import "testing"

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 0.5, 1, 0)
	lt.Register(2, 0.7, 1, 1)
	lt.Register(3, 0.9, 3, 0)

	lt.RecordChild(1)
	lt.RecordEat(2, 0.25)
	lt.RecordEat(2, 0.5)
	lt.RecordFight(3)
	lt.UpdateEnergy(1, 1.5)
	lt.UpdateEnergy(1, 1.2)
	lt.UpdateAge(1, 2.0)

	s := lt.Get(1)
	if s.Children != 1 || s.PeakEnergy != 1.5 || s.AgeYears != 1.5 {
		t.Errorf("unexpected stats for 1: %+v", *s)
	}
	if got := lt.Get(2).TotalEaten; got != 0.75 {
		t.Errorf("expected total eaten 0.75, got %v", got)
	}
	if got := lt.ActiveCladeCount(); got != 2 {
		t.Errorf("expected 2 clades, got %d", got)
	}

	removed := lt.Remove(3)
	if removed == nil || removed.FightTicks != 1 {
		t.Errorf("expected removed stats with 1 fight tick, got %+v", removed)
	}
	if lt.Count() != 2 || lt.ActiveCladeCount() != 1 {
		t.Errorf("expected 2 tracked in 1 clade, got %d in %d", lt.Count(), lt.ActiveCladeCount())
	}

	// Unknown IDs are ignored.
	lt.RecordChild(99)
	if lt.CladeOf(99) != 0 {
		t.Error("expected clade 0 for unknown ID")
	}
}
