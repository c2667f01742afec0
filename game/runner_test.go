package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunnerStopsAtMaxTicks(t *testing.T) {
	cfg := testConfig(4)
	g := newTestGame(t, cfg, nil)

	sim := cfg.Simulation
	sim.TicksPerSecond = 0
	sim.PublishEvery = 5
	r := NewRunner(g, sim, 8)
	r.SetMaxTicks(20)

	publishes := 0
	r.OnPublish(func(v *View) { publishes++ })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if g.Tick() != 20 {
		t.Errorf("expected 20 ticks, got %d", g.Tick())
	}
	v := r.View()
	if v == nil || v.Tick != 20 {
		t.Fatalf("expected final view at tick 20, got %+v", v)
	}
	// initial, every 5 ticks, and the final one
	if publishes < 5 {
		t.Errorf("expected at least 5 publishes, got %d", publishes)
	}
}

func TestRunnerSubmitQueueFull(t *testing.T) {
	g := newTestGame(t, testConfig(0), idleBehavior{})
	r := NewRunner(g, g.Config().Simulation, 1)

	if err := r.Submit(Command{Kind: CmdSetUserControl, Amount: 1}); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if err := r.Submit(Command{Kind: CmdSetUserControl}); !errors.Is(err, ErrCommandQueueFull) {
		t.Errorf("expected ErrCommandQueueFull, got %v", err)
	}
	if err := r.Submit(Command{Kind: CommandKind(99)}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	g := newTestGame(t, testConfig(2), nil)
	r := NewRunner(g, g.Config().Simulation, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("expected nil on cancellation, got %v", err)
	}
	if g.Tick() != 0 {
		t.Errorf("expected no steps, got %d", g.Tick())
	}
	if r.View() == nil {
		t.Error("expected a published view")
	}
}

func TestRunnerAppliesQueuedCommands(t *testing.T) {
	cfg := testConfig(0)
	g := newTestGame(t, cfg, idleBehavior{})
	sim := cfg.Simulation
	sim.TicksPerSecond = 0
	r := NewRunner(g, sim, 4)
	r.SetMaxTicks(1)

	if err := r.Submit(Command{Kind: CmdAdjustMinimum, Amount: 1}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if g.Minimum() != cfg.Population.MinimumIncrement {
		t.Errorf("expected minimum %d, got %d", cfg.Population.MinimumIncrement, g.Minimum())
	}
	if g.CreatureCount() != g.Minimum() {
		t.Errorf("expected population %d, got %d", g.Minimum(), g.CreatureCount())
	}
}
