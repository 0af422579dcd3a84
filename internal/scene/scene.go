// Package scene compiles a validated scene document into runnable
// sequences and state machines bound to host targets.
package scene

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/actions"
	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// DefaultFrameInterval is the tick period used when a scene does not set one.
const DefaultFrameInterval = 16 * time.Millisecond

// Deps are the host capabilities a compiled scene runs against. Every field
// is optional.
type Deps struct {
	// Applier receives computed values for every target.
	Applier ports.StyleApplier
	// Elements maps target ids to opaque host elements.
	Elements   map[string]any
	Preference ports.PreferenceSource
	Clock      ports.Clock
	Ticker     ports.Ticker
	Bus        *events.Bus
	Logger     *logger.Logger
	// Actions resolves call steps and transition actions. When nil the
	// built-in registry is used.
	Actions *actions.Registry
}

// Runtime is a compiled scene.
type Runtime struct {
	Name          string
	FrameInterval time.Duration
	Adapter       *motion.Adapter
	Bus           *events.Bus
	Targets       sequence.Targets
	Trajectories  map[string]trajectory.Path

	sequences     map[string]*sequence.Sequence
	sequenceOrder []string
	machines      map[string]*statemachine.Machine
	machineOrder  []string
}

// Sequence returns a compiled sequence by id.
func (r *Runtime) Sequence(id string) (*sequence.Sequence, bool) {
	s, ok := r.sequences[id]
	return s, ok
}

// SequenceIDs lists sequences in declaration order.
func (r *Runtime) SequenceIDs() []string { return slices.Clone(r.sequenceOrder) }

// Machine returns a compiled machine by id.
func (r *Runtime) Machine(id string) (*statemachine.Machine, bool) {
	m, ok := r.machines[id]
	return m, ok
}

// MachineIDs lists machines in declaration order.
func (r *Runtime) MachineIDs() []string { return slices.Clone(r.machineOrder) }

// Compile builds every trajectory, sequence and machine of a validated scene.
func Compile(sc *config.Scene, deps Deps) (*Runtime, error) {
	if sc == nil {
		return nil, mkerrors.NewConfigurationError("scene", "scene is nil", nil)
	}

	log := deps.Logger.WithFields(map[string]any{"scene": sc.Name})
	clock := deps.Clock
	if clock == nil {
		clock = scheduler.SystemClock{}
	}

	bus := deps.Bus
	if bus == nil {
		opts := []events.Option{events.WithLogger(log), events.WithClock(clock)}
		if sc.Settings.HistorySize > 0 {
			opts = append(opts, events.WithHistorySize(sc.Settings.HistorySize))
		}
		bus = events.NewBus(opts...)
	}

	registry := deps.Actions
	if registry == nil {
		registry = actions.NewDefaultRegistry(log, bus)
	}

	adapterCfg, err := AdapterConfig(sc.Settings)
	if err != nil {
		return nil, err
	}
	preference := deps.Preference
	if sc.Settings.ReducedMotion {
		preference = ports.StaticPreference(true)
	}
	adapter := motion.NewAdapter(adapterCfg, preference, motion.WithLogger(log))

	frame := DefaultFrameInterval
	if sc.Settings.FrameInterval != "" {
		if frame, err = config.ParseDuration(sc.Settings.FrameInterval); err != nil || frame <= 0 {
			return nil, mkerrors.NewConfigurationError("settings.frame_interval", fmt.Sprintf("invalid frame interval %q", sc.Settings.FrameInterval), err)
		}
	}

	rt := &Runtime{
		Name:          sc.Name,
		FrameInterval: frame,
		Adapter:       adapter,
		Bus:           bus,
		Targets:       make(sequence.Targets, len(sc.Targets)),
		Trajectories:  make(map[string]trajectory.Path, len(sc.Trajectories)),
		sequences:     make(map[string]*sequence.Sequence, len(sc.Sequences)),
		machines:      make(map[string]*statemachine.Machine, len(sc.Machines)),
	}

	for _, t := range sc.Targets {
		rt.Targets[t.ID] = sequence.Binding{
			Target:  ports.Target{ID: t.ID, Element: deps.Elements[t.ID]},
			Applier: deps.Applier,
			Initial: effect.Props(t.Initial),
			Rest:    effect.Props(t.Rest),
		}
	}

	for i, t := range sc.Trajectories {
		path, err := BuildTrajectory(t)
		if err != nil {
			return nil, mkerrors.NewConfigurationError(fmt.Sprintf("trajectories[%d]", i), err.Error(), err)
		}
		rt.Trajectories[t.ID] = path
	}

	cancelMode := sequence.SettleLast
	if sc.Settings.CancelMode == "rest" {
		cancelMode = sequence.SettleRest
	}

	compiler := &stepCompiler{
		paths:     rt.Trajectories,
		sequences: config.SequenceMap(sc.Sequences),
		actions:   registry,
	}
	targetNames := rt.Targets.Names()

	for i, decl := range sc.Sequences {
		compiler.including = []string{decl.ID}
		steps, err := compiler.steps(fmt.Sprintf("sequences[%d].steps", i), decl.Steps)
		if err != nil {
			return nil, err
		}
		program, err := sequence.Compile(decl.ID, steps, targetNames)
		if err != nil {
			return nil, err
		}

		halt := sc.Settings.HaltOnError
		if decl.HaltOnError != nil {
			halt = *decl.HaltOnError
		}
		seq, err := sequence.New(program, rt.Targets,
			sequence.WithAdapter(adapter),
			sequence.WithBus(bus),
			sequence.WithLogger(log),
			sequence.WithClock(clock),
			sequence.WithTicker(deps.Ticker),
			sequence.WithHaltOnError(halt),
			sequence.WithCancelMode(cancelMode),
			sequence.WithVars(decl.Vars),
		)
		if err != nil {
			return nil, err
		}
		rt.sequences[decl.ID] = seq
		rt.sequenceOrder = append(rt.sequenceOrder, decl.ID)
	}

	for i, decl := range sc.Machines {
		def, err := BuildDefinition(fmt.Sprintf("machines[%d]", i), decl, rt.Trajectories, registry, log)
		if err != nil {
			return nil, err
		}
		binding, ok := rt.Targets[decl.Target]
		if !ok {
			return nil, mkerrors.NewConfigurationError(fmt.Sprintf("machines[%d].target", i), fmt.Sprintf("references unknown target %q", decl.Target), nil)
		}

		opts := []statemachine.Option{
			statemachine.WithTarget(binding.Target, binding.Applier),
			statemachine.WithAdapter(adapter),
			statemachine.WithBus(bus),
			statemachine.WithLogger(log),
			statemachine.WithClock(clock),
			statemachine.WithTicker(deps.Ticker),
			statemachine.WithStrict(decl.Strict),
			statemachine.WithVars(decl.Vars),
			statemachine.WithInitialValues(binding.Initial),
		}
		if sc.Settings.HistorySize > 0 {
			opts = append(opts, statemachine.WithHistorySize(sc.Settings.HistorySize))
		}
		rt.machines[decl.ID] = statemachine.New(def, opts...)
		rt.machineOrder = append(rt.machineOrder, decl.ID)
	}

	log.Debug("scene compiled",
		"targets", len(rt.Targets),
		"trajectories", len(rt.Trajectories),
		"sequences", len(rt.sequences),
		"machines", len(rt.machines))

	return rt, nil
}

// AdapterConfig converts scene settings into a motion adapter configuration.
func AdapterConfig(s config.Settings) (motion.Config, error) {
	cfg := motion.DefaultConfig()
	if s.Sensitivity != "" {
		level, err := motion.ParseLevel(s.Sensitivity)
		if err != nil {
			return cfg, err
		}
		cfg.Level = level
	}
	if s.RespectSystemPreference != nil {
		cfg.RespectSystemPreference = *s.RespectSystemPreference
	}
	if s.ReducedMotion {
		cfg.RespectSystemPreference = true
	}

	if o := s.Overrides; o != nil {
		cfg.Overrides = motion.Overrides{
			DistanceScale:   o.DistanceScale,
			SpeedMultiplier: o.SpeedMultiplier,
			Threshold:       o.Threshold,
			DisableFlashing: o.DisableFlashing,
			Disable3D:       o.Disable3D,
			DisableAutoplay: o.DisableAutoplay,
		}
		if o.DisabledCategories != nil {
			cfg.Overrides.DisabledCategories = make([]motion.Category, 0, len(o.DisabledCategories))
			for i, name := range o.DisabledCategories {
				category, err := motion.ParseCategory(name)
				if err != nil {
					return cfg, mkerrors.NewConfigurationError(fmt.Sprintf("settings.overrides.disabled_categories[%d]", i), err.Error(), err)
				}
				cfg.Overrides.DisabledCategories = append(cfg.Overrides.DisabledCategories, category)
			}
		}
	}
	return cfg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
