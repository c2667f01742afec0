package game

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/pthm-cable/tidepool/config"
)

// Runner owns a Game on a single goroutine. Other goroutines read published
// views and submit commands through a buffered channel.
type Runner struct {
	game *Game

	timeStep       float64
	stepsPerUpdate int
	publishEvery   int
	limiter        *rate.Limiter // nil = unpaced
	maxTicks       int64         // 0 = unlimited

	commands  chan Command
	view      atomic.Pointer[View]
	onPublish func(*View)
}

// NewRunner wraps g using the simulation config.
func NewRunner(g *Game, sim config.SimulationConfig, queue int) *Runner {
	if queue < 1 {
		queue = 1
	}
	r := &Runner{
		game:           g,
		timeStep:       sim.TimeStep,
		stepsPerUpdate: max(sim.StepsPerUpdate, 1),
		publishEvery:   max(sim.PublishEvery, 1),
		commands:       make(chan Command, queue),
	}
	if sim.TicksPerSecond > 0 {
		perUpdate := sim.TicksPerSecond / float64(r.stepsPerUpdate)
		r.limiter = rate.NewLimiter(rate.Limit(perUpdate), 1)
	}
	return r
}

// SetMaxTicks stops Run after n ticks. 0 means unlimited.
func (r *Runner) SetMaxTicks(n int64) {
	r.maxTicks = n
}

// OnPublish registers a callback run on the simulation goroutine after
// every published view.
func (r *Runner) OnPublish(fn func(*View)) {
	r.onPublish = fn
}

// View returns the latest published view. Nil before Run starts.
func (r *Runner) View() *View {
	return r.view.Load()
}

// Submit queues a command without blocking.
func (r *Runner) Submit(cmd Command) error {
	if _, ok := commandNames[cmd.Kind]; !ok {
		return ErrUnknownCommand
	}
	select {
	case r.commands <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Run steps the game until ctx is done, the tick limit is reached or a
// step fails. Cancellation is not an error.
func (r *Runner) Run(ctx context.Context) error {
	g := r.game
	r.publish()

	for {
		if err := ctx.Err(); err != nil {
			r.publish()
			return nil
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				r.publish()
				return nil
			}
		}

		r.drainCommands()
		for i := 0; i < r.stepsPerUpdate; i++ {
			if err := g.Step(r.timeStep); err != nil {
				return err
			}
			if g.Tick()%int64(r.publishEvery) == 0 {
				r.publish()
			}
			if r.maxTicks > 0 && g.Tick() >= r.maxTicks {
				r.publish()
				slog.Info("max ticks reached", "tick", g.Tick())
				return nil
			}
		}
	}
}

func (r *Runner) drainCommands() {
	for {
		select {
		case cmd := <-r.commands:
			if err := r.game.Submit(cmd); err != nil {
				slog.Warn("command rejected", "kind", cmd.Kind.String(), "error", err)
			}
		default:
			return
		}
	}
}

func (r *Runner) publish() {
	v := r.game.View()
	v.Events = r.game.DrainEvents()
	r.view.Store(v)
	r.game.RecordPublish()
	if r.onPublish != nil {
		r.onPublish(v)
	}
}
