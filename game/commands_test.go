package game

import (
	"errors"
	"math"
	"testing"
)

func TestParseCommandKind(t *testing.T) {
	for kind, name := range commandNames {
		got, err := ParseCommandKind(name)
		if err != nil {
			t.Errorf("ParseCommandKind(%q) failed: %v", name, err)
			continue
		}
		if got != kind {
			t.Errorf("ParseCommandKind(%q): expected %d, got %d", name, kind, got)
		}
	}

	if _, err := ParseCommandKind("teleport"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestSubmitRejectsUnknown(t *testing.T) {
	g := newTestGame(t, testConfig(0), idleBehavior{})

	tests := []struct {
		name string
		cmd  Command
	}{
		{"zero kind", Command{}},
		{"out of range", Command{Kind: CommandKind(200)}},
		{"bad save slot", Command{Kind: CmdRequestSave, Amount: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.Submit(tt.cmd); !errors.Is(err, ErrUnknownCommand) {
				t.Errorf("expected ErrUnknownCommand, got %v", err)
			}
		})
	}
}

func TestAdjustMinimum(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		amount float64
		want   int
	}{
		{"up one", 10, 1, 15},
		{"down two", 10, -2, 0},
		{"clamped at zero", 3, -1, 0},
		{"rounded", 0, 1.6, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, testConfig(tt.start), idleBehavior{})
			if err := g.Submit(Command{Kind: CmdAdjustMinimum, Amount: tt.amount}); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			g.drainCommands()
			if g.Minimum() != tt.want {
				t.Errorf("expected minimum %d, got %d", tt.want, g.Minimum())
			}
		})
	}
}

func TestUserControlDisconnectsBrains(t *testing.T) {
	b := &recordingBehavior{}
	g := newTestGame(t, testConfig(0), b)
	placeCreature(g, 5, 5, 2)

	if err := g.Submit(Command{Kind: CmdSetUserControl, Amount: 1}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := g.Step(0.001); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !g.UserControl() {
		t.Fatal("expected user control on")
	}
	if len(b.useOutput) != 1 || b.useOutput[0] {
		t.Errorf("expected think without output, got %v", b.useOutput)
	}
}

func TestTemperatureCommandSwaps(t *testing.T) {
	g := newTestGame(t, testConfig(0), idleBehavior{})
	if err := g.Submit(Command{Kind: CmdSetMaxTemperature, Amount: 0}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := g.Step(0.001); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	min, max := g.Climate()
	if math.Abs(min+2) > 1e-12 || math.Abs(max+0.5) > 1e-12 {
		t.Errorf("expected bounds [-2, -0.5], got [%f, %f]", min, max)
	}
}

func TestIntentsIgnoredWithoutSelection(t *testing.T) {
	g := newTestGame(t, testConfig(0), idleBehavior{})
	c := placeCreature(g, 5, 5, 2)
	id := c.ID()

	if err := g.Submit(Command{Kind: CmdSetUserControl, Amount: 1}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := g.Submit(Command{Kind: CmdAccelerate, Amount: 1}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := g.Step(0.01); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	c, _ = g.Creature(id)
	if c.Velocity().X != 0 {
		t.Errorf("expected no motion without a selection, got vx=%f", c.Velocity().X)
	}
}

func TestManualHueWraps(t *testing.T) {
	g := newTestGame(t, testConfig(0), idleBehavior{})
	c := placeCreature(g, 5, 5, 2)
	c.SetHue(0.01)

	g.userControl = true
	g.selectedID = c.ID()
	g.intents = []Command{{Kind: CmdHue, Amount: -1}}
	g.applyIntents(c, 0.001)

	want := 0.01 - ManualHueStep + 1
	if math.Abs(c.Color().Hue-want) > 1e-12 {
		t.Errorf("expected hue %f, got %f", want, c.Color().Hue)
	}
}

func TestManualReproduce(t *testing.T) {
	g := newTestGame(t, testConfig(0), idleBehavior{})
	c := placeCreature(g, 5, 5, 3)

	g.intents = []Command{{Kind: CmdReproduce, Amount: 1}}
	g.applyIntents(c, 0.001)

	if g.CreatureCount() != 2 {
		t.Fatalf("expected 2 creatures, got %d", g.CreatureCount())
	}
	want := 3 - g.cfg.Creature.ManualBirthSize
	if math.Abs(c.Energy()-want) > 1e-12 {
		t.Errorf("expected parent energy %f, got %f", want, c.Energy())
	}
}

func TestRequestSaveCommand(t *testing.T) {
	var slots []SaveSlot
	cfg := testConfig(0)
	cfg.Saves.ImageInterval = 0
	cfg.Saves.TextInterval = 0
	g, err := NewGameWithOptions(Options{
		Seed:   3,
		Config: cfg,
		SaveHook: func(slot SaveSlot, count int, year float64) {
			slots = append(slots, slot)
		},
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}

	if err := g.Submit(Command{Kind: CmdRequestSave, Amount: float64(SaveManualText)}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := g.Step(0.001); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if len(slots) != 1 || slots[0] != SaveManualText {
		t.Errorf("expected one manual_text save, got %v", slots)
	}
	if g.SaveCount(SaveManualText) != 1 {
		t.Errorf("expected save count 1, got %d", g.SaveCount(SaveManualText))
	}
}

func TestIntentTargetsOrganism(t *testing.T) {
	tests := []struct {
		name   string
		target string // "", "selected" or "other"
		moves  bool
	}{
		{"untargeted", "", true},
		{"selected", "selected", true},
		{"other organism", "other", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, testConfig(0), idleBehavior{})
			a := placeCreature(g, 5, 5, 2)
			b := placeCreature(g, 15, 15, 2)
			aID, bID := a.ID(), b.ID()

			var target uint32
			switch tt.target {
			case "selected":
				target = aID
			case "other":
				target = bID
			}
			for _, cmd := range []Command{
				{Kind: CmdSetUserControl, Amount: 1},
				{Kind: CmdSelect, OrganismID: aID},
				{Kind: CmdAccelerate, OrganismID: target, Amount: 1},
			} {
				if err := g.Submit(cmd); err != nil {
					t.Fatalf("Submit failed: %v", err)
				}
			}
			if err := g.Step(0.01); err != nil {
				t.Fatalf("Step failed: %v", err)
			}

			a, _ = g.Creature(aID)
			b, _ = g.Creature(bID)
			if moved := a.Velocity().X > 0; moved != tt.moves {
				t.Errorf("expected selected creature moving %v, got vx=%f", tt.moves, a.Velocity().X)
			}
			if b.Velocity().X != 0 {
				t.Errorf("expected unselected creature still, got vx=%f", b.Velocity().X)
			}
		})
	}
}
