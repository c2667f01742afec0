package game

import (
	"fmt"
	"log/slog"
	"math"
)

// CommandKind identifies a command.
type CommandKind uint8

const (
	// Control intents, applied to the selected creature while user
	// control is on. Amount scales the manual step and usually is +1 or -1.
	// A non-zero OrganismID must match the selection or the intent is dropped.
	CmdAccelerate CommandKind = iota + 1
	CmdRotate
	CmdEat
	CmdFight
	CmdHue
	CmdMouthHue
	CmdReproduce

	// Settings, applied at the start of the next step.
	CmdSelect            // OrganismID, 0 clears the selection
	CmdSetMinTemperature // Amount is a thermometer proportion
	CmdSetMaxTemperature
	CmdSetUserControl // Amount != 0 turns it on
	CmdAdjustMinimum  // Amount is a signed number of increments
	CmdRequestSave    // Amount is the SaveSlot
)

var commandNames = map[CommandKind]string{
	CmdAccelerate:        "accelerate",
	CmdRotate:            "rotate",
	CmdEat:               "eat",
	CmdFight:             "fight",
	CmdHue:               "hue",
	CmdMouthHue:          "mouth_hue",
	CmdReproduce:         "reproduce",
	CmdSelect:            "select",
	CmdSetMinTemperature: "set_min_temperature",
	CmdSetMaxTemperature: "set_max_temperature",
	CmdSetUserControl:    "set_user_control",
	CmdAdjustMinimum:     "adjust_minimum",
	CmdRequestSave:       "request_save",
}

// String returns the wire name of the kind.
func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsIntent reports whether the kind drives the selected creature.
func (k CommandKind) IsIntent() bool {
	return k >= CmdAccelerate && k <= CmdReproduce
}

// ParseCommandKind returns the kind with the given wire name.
func ParseCommandKind(name string) (CommandKind, error) {
	for k, n := range commandNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Command is a request from outside the tick.
type Command struct {
	Kind       CommandKind
	OrganismID uint32
	Amount     float64
}

// Manual control step sizes.
const (
	ManualAccelerate = 0.04
	ManualRotate     = 0.1
	ManualEat        = 0.1
	ManualFight      = 0.5
	ManualHueStep    = 0.02
)

// Submit queues a command for the next step.
func (g *Game) Submit(cmd Command) error {
	if _, ok := commandNames[cmd.Kind]; !ok {
		return fmt.Errorf("%w: kind %d", ErrUnknownCommand, cmd.Kind)
	}
	if cmd.Kind == CmdRequestSave && !SaveSlot(cmd.Amount).Valid() {
		return fmt.Errorf("%w: save slot %v", ErrUnknownCommand, cmd.Amount)
	}
	g.pending = append(g.pending, cmd)
	return nil
}

// drainCommands applies settings and stages control intents for this step.
func (g *Game) drainCommands() {
	g.intents = g.intents[:0]
	for _, cmd := range g.pending {
		if cmd.Kind.IsIntent() {
			g.intents = append(g.intents, cmd)
			continue
		}
		g.applySetting(cmd)
	}
	g.pending = g.pending[:0]
}

func (g *Game) applySetting(cmd Command) {
	switch cmd.Kind {
	case CmdSelect:
		g.selectedID = cmd.OrganismID
	case CmdSetMinTemperature:
		g.SetMinTemperature(cmd.Amount)
	case CmdSetMaxTemperature:
		g.SetMaxTemperature(cmd.Amount)
	case CmdSetUserControl:
		g.userControl = cmd.Amount != 0
	case CmdAdjustMinimum:
		n := g.minimum + int(math.Round(cmd.Amount))*g.cfg.Population.MinimumIncrement
		if err := g.SetMinimum(max(n, 0)); err != nil {
			slog.Warn("minimum adjustment rejected", "error", err)
		}
	case CmdRequestSave:
		g.RequestSave(SaveSlot(cmd.Amount))
	}
}

// applyIntents drives c with the staged control intents. Motion intents
// use the scaled timestep; reproduction uses the raw one.
func (g *Game) applyIntents(c Creature, dt float64) {
	scaled := dt * g.cfg.Physics.TimestepsPerYear
	for _, cmd := range g.intents {
		if cmd.OrganismID != 0 && cmd.OrganismID != c.ID() {
			continue
		}
		switch cmd.Kind {
		case CmdAccelerate:
			c.Accelerate(ManualAccelerate*cmd.Amount, scaled)
		case CmdRotate:
			c.Rotate(ManualRotate*cmd.Amount, scaled)
		case CmdEat:
			c.Eat(ManualEat*cmd.Amount, scaled)
		case CmdFight:
			c.Fight(ManualFight*cmd.Amount, scaled)
		case CmdHue:
			c.SetHue(c.Color().Hue + ManualHueStep*cmd.Amount)
		case CmdMouthHue:
			c.SetMouthHue(c.Organism().MouthHue + ManualHueStep*cmd.Amount)
		case CmdReproduce:
			c.Reproduce(g.cfg.Creature.ManualBirthSize, dt)
		}
	}
}
