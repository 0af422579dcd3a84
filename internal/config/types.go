package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/motionkit/internal/vec"
)

// Scene is a motionkit scene document: the targets a host binds, named
// trajectories, sequences and state machines.
type Scene struct {
	Version      string       `yaml:"version" validate:"required,semver"`
	Name         string       `yaml:"name" validate:"required,min=1,max=100"`
	Description  string       `yaml:"description,omitempty"`
	Settings     Settings     `yaml:"settings,omitempty"`
	Targets      []Target     `yaml:"targets" validate:"required,min=1,dive"`
	Trajectories []Trajectory `yaml:"trajectories,omitempty" validate:"omitempty,dive"`
	Sequences    []Sequence   `yaml:"sequences,omitempty" validate:"omitempty,dive"`
	Machines     []Machine    `yaml:"machines,omitempty" validate:"omitempty,dive"`
}

// Settings holds scene-wide playback and accessibility parameters.
type Settings struct {
	Sensitivity             string     `yaml:"sensitivity,omitempty" validate:"omitempty,sensitivity"`
	RespectSystemPreference *bool      `yaml:"respect_system_preference,omitempty"`
	ReducedMotion           bool       `yaml:"reduced_motion,omitempty"`
	HaltOnError             bool       `yaml:"halt_on_error,omitempty"`
	CancelMode              string     `yaml:"cancel_mode,omitempty" validate:"omitempty,oneof=last rest"`
	FrameInterval           string     `yaml:"frame_interval,omitempty" validate:"omitempty,duration"`
	HistorySize             int        `yaml:"history_size,omitempty" validate:"omitempty,min=1,max=10000"`
	Overrides               *Overrides `yaml:"overrides,omitempty"`
}

// Overrides replace individual fields of the sensitivity profile.
type Overrides struct {
	DistanceScale      *float64 `yaml:"distance_scale,omitempty" validate:"omitempty,gte=0,lte=1"`
	SpeedMultiplier    *float64 `yaml:"speed_multiplier,omitempty" validate:"omitempty,gt=0,lte=10"`
	Threshold          *float64 `yaml:"threshold,omitempty" validate:"omitempty,gte=0,lte=101"`
	DisableFlashing    *bool    `yaml:"disable_flashing,omitempty"`
	Disable3D          *bool    `yaml:"disable_3d,omitempty"`
	DisableAutoplay    *bool    `yaml:"disable_autoplay,omitempty"`
	DisabledCategories []string `yaml:"disabled_categories,omitempty" validate:"omitempty,dive,category"`
}

// Target declares a named animation target and its property values.
type Target struct {
	ID      string             `yaml:"id" validate:"required,ident"`
	Initial map[string]float64 `yaml:"initial,omitempty"`
	Rest    map[string]float64 `yaml:"rest,omitempty"`
}

// Trajectory declares a named path. Which fields apply depends on Type.
type Trajectory struct {
	ID     string `yaml:"id" validate:"required,ident"`
	Type   string `yaml:"type" validate:"required,oneof=projectile launch bezier spiral sine line"`
	Points int    `yaml:"points,omitempty" validate:"omitempty,min=2,max=10000"`

	Start vec.Vector3 `yaml:"start,omitempty"`
	End   vec.Vector3 `yaml:"end,omitempty"`

	// projectile and launch
	Velocity    vec.Vector3  `yaml:"velocity,omitempty"`
	Gravity     *vec.Vector3 `yaml:"gravity,omitempty"`
	Duration    float64      `yaml:"duration,omitempty" validate:"omitempty,gt=0"`
	Floor       *float64     `yaml:"floor,omitempty"`
	Restitution float64      `yaml:"restitution,omitempty" validate:"gte=0,lte=1"`
	MaxBounces  int          `yaml:"max_bounces,omitempty" validate:"gte=0"`
	Speed       float64      `yaml:"speed,omitempty" validate:"gte=0"`

	// bezier
	Control1 vec.Vector3 `yaml:"control1,omitempty"`
	Control2 vec.Vector3 `yaml:"control2,omitempty"`

	// spiral
	Center       vec.Vector3 `yaml:"center,omitempty"`
	StartRadius  float64     `yaml:"start_radius,omitempty" validate:"gte=0"`
	Growth       float64     `yaml:"growth,omitempty"`
	AngularSpeed float64     `yaml:"angular_speed,omitempty"`
	Turns        float64     `yaml:"turns,omitempty" validate:"gte=0"`
	StartAngle   float64     `yaml:"start_angle,omitempty"`
	Rise         float64     `yaml:"rise,omitempty"`

	// sine
	Amplitude float64     `yaml:"amplitude,omitempty"`
	Frequency float64     `yaml:"frequency,omitempty"`
	Normal    vec.Vector3 `yaml:"normal,omitempty"`
}

// Effect describes one animation. Exactly one of Preset, To (a tween),
// Spring (with To), Follow or Set selects its kind.
type Effect struct {
	Preset string             `yaml:"preset,omitempty" validate:"omitempty,preset"`
	From   map[string]float64 `yaml:"from,omitempty"`
	To     map[string]float64 `yaml:"to,omitempty"`
	Spring *Spring            `yaml:"spring,omitempty"`
	Follow string             `yaml:"follow,omitempty" validate:"omitempty,ident"`
	Set    map[string]float64 `yaml:"set,omitempty"`

	Duration string `yaml:"duration,omitempty" validate:"omitempty,duration"`
	Delay    string `yaml:"delay,omitempty" validate:"omitempty,duration"`
	Easing   string `yaml:"easing,omitempty" validate:"omitempty,easing"`

	Category       string  `yaml:"category,omitempty" validate:"omitempty,category"`
	Importance     string  `yaml:"importance,omitempty" validate:"omitempty,importance"`
	Flashing       bool    `yaml:"flashing,omitempty"`
	Autoplay       bool    `yaml:"autoplay,omitempty"`
	Looping        bool    `yaml:"looping,omitempty"`
	ScreenCoverage float64 `yaml:"screen_coverage,omitempty" validate:"gte=0,lte=1"`
}

// Kind names the effect variant, or "" when none or several are set.
func (e Effect) Kind() string {
	var kinds []string
	if e.Preset != "" {
		kinds = append(kinds, "preset")
	}
	if e.Spring != nil {
		kinds = append(kinds, "spring")
	} else if e.To != nil {
		kinds = append(kinds, "tween")
	}
	if e.Follow != "" {
		kinds = append(kinds, "follow")
	}
	if e.Set != nil {
		kinds = append(kinds, "set")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Spring parameterises a spring effect. Stiffness and damping ratio, or
// tension and friction, may be given instead of a preset.
type Spring struct {
	Preset       string  `yaml:"preset,omitempty" validate:"omitempty,spring_preset"`
	Mass         float64 `yaml:"mass,omitempty" validate:"omitempty,gt=0"`
	Stiffness    float64 `yaml:"stiffness,omitempty" validate:"omitempty,gt=0"`
	DampingRatio float64 `yaml:"damping_ratio,omitempty" validate:"omitempty,gt=0"`
	Tension      float64 `yaml:"tension,omitempty" validate:"omitempty,gt=0"`
	Friction     float64 `yaml:"friction,omitempty" validate:"omitempty,gte=0"`
	Integrator   string  `yaml:"integrator,omitempty" validate:"omitempty,oneof=rk4 euler analytic"`
}

// Condition compares a context variable. Op defaults to eq when Value is
// set and truthy otherwise.
type Condition struct {
	Var   string `yaml:"var" validate:"required"`
	Op    string `yaml:"op,omitempty" validate:"omitempty,operator"`
	Value any    `yaml:"value,omitempty"`
}

// Sequence declares a named step tree.
type Sequence struct {
	ID          string         `yaml:"id" validate:"required,ident"`
	Description string         `yaml:"description,omitempty"`
	Vars        map[string]any `yaml:"vars,omitempty"`
	HaltOnError *bool          `yaml:"halt_on_error,omitempty"`
	Steps       []Step         `yaml:"steps" validate:"required,min=1"`
}

// Step is one node of a sequence. Each YAML step is a mapping with exactly
// one key naming its kind.
type Step struct {
	Animate  *AnimateStep `yaml:"animate,omitempty"`
	Wait     string       `yaml:"wait,omitempty" validate:"omitempty,duration"`
	Stagger  *StaggerStep `yaml:"stagger,omitempty"`
	Parallel []Step       `yaml:"parallel,omitempty"`
	Group    []Step       `yaml:"group,omitempty"`
	If       *IfStep      `yaml:"if,omitempty"`
	Loop     *LoopStep    `yaml:"loop,omitempty"`
	Set      *SetStep     `yaml:"set,omitempty"`
	Call     *CallStep    `yaml:"call,omitempty"`
	Emit     *EmitStep    `yaml:"emit,omitempty"`
	Include  string       `yaml:"include,omitempty" validate:"omitempty,ident"`

	// Line is the YAML line the step starts on, when decoded from a file.
	Line int `yaml:"-"`
}

var stepKinds = []string{"animate", "wait", "stagger", "parallel", "group", "if", "loop", "set", "call", "emit", "include"}

// Kind names the step variant.
func (s Step) Kind() string {
	switch {
	case s.Animate != nil:
		return "animate"
	case s.Wait != "":
		return "wait"
	case s.Stagger != nil:
		return "stagger"
	case s.Parallel != nil:
		return "parallel"
	case s.Group != nil:
		return "group"
	case s.If != nil:
		return "if"
	case s.Loop != nil:
		return "loop"
	case s.Set != nil:
		return "set"
	case s.Call != nil:
		return "call"
	case s.Emit != nil:
		return "emit"
	case s.Include != "":
		return "include"
	}
	return ""
}

// UnmarshalYAML decodes the single-key step mapping into its variant.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping with one of: %s", value.Line, strings.Join(stepKinds, ", "))
	}
	if len(value.Content) != 2 {
		return fmt.Errorf("line %d: step must have exactly one key, got %d", value.Line, len(value.Content)/2)
	}

	key, body := value.Content[0].Value, value.Content[1]
	*s = Step{Line: value.Line}

	var err error
	switch key {
	case "animate":
		s.Animate = &AnimateStep{}
		err = body.Decode(s.Animate)
	case "wait":
		err = body.Decode(&s.Wait)
		if err == nil && s.Wait == "" {
			err = fmt.Errorf("line %d: wait needs a duration", body.Line)
		}
	case "stagger":
		s.Stagger = &StaggerStep{}
		err = body.Decode(s.Stagger)
	case "parallel":
		s.Parallel = []Step{}
		err = body.Decode(&s.Parallel)
	case "group":
		s.Group = []Step{}
		err = body.Decode(&s.Group)
	case "if":
		s.If = &IfStep{}
		err = body.Decode(s.If)
	case "loop":
		s.Loop = &LoopStep{}
		err = body.Decode(s.Loop)
	case "set":
		s.Set = &SetStep{}
		err = body.Decode(s.Set)
	case "call":
		s.Call = &CallStep{}
		err = body.Decode(s.Call)
	case "emit":
		s.Emit = &EmitStep{}
		err = body.Decode(s.Emit)
	case "include":
		err = body.Decode(&s.Include)
	default:
		return fmt.Errorf("line %d: unknown step kind %q (expected one of: %s)", value.Line, key, strings.Join(stepKinds, ", "))
	}
	return err
}

// AnimateStep runs an effect on one target.
type AnimateStep struct {
	Target string `yaml:"target" validate:"required,ident"`
	Effect `yaml:",inline"`
}

// StaggerStep runs an effect on several targets with increasing offsets.
type StaggerStep struct {
	Targets   []string `yaml:"targets" validate:"required,min=1,dive,ident"`
	Interval  string   `yaml:"interval,omitempty" validate:"omitempty,duration"`
	Direction string   `yaml:"direction,omitempty" validate:"omitempty,direction"`
	Effect    `yaml:",inline"`
}

// IfStep branches on a condition.
type IfStep struct {
	Condition `yaml:",inline"`
	Then      []Step `yaml:"then"`
	Else      []Step `yaml:"else,omitempty"`
}

// LoopStep repeats its steps over items, a list variable, a count or
// forever.
type LoopStep struct {
	Var      string `yaml:"var,omitempty" validate:"omitempty,ident"`
	Items    []any  `yaml:"items,omitempty"`
	ItemsVar string `yaml:"items_var,omitempty"`
	Repeat   int    `yaml:"repeat,omitempty" validate:"gte=0"`
	Forever  bool   `yaml:"forever,omitempty"`
	Steps    []Step `yaml:"steps" validate:"required,min=1"`
}

// SetStep assigns a context variable.
type SetStep struct {
	Name  string `yaml:"name" validate:"required,ident"`
	Value any    `yaml:"value"`
}

// CallStep invokes a registered action.
type CallStep struct {
	Action string         `yaml:"action" validate:"required"`
	Args   map[string]any `yaml:"args,omitempty"`
}

// EmitStep publishes a custom event.
type EmitStep struct {
	Event   string         `yaml:"event" validate:"required"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

// Machine declares a state machine bound to one target.
type Machine struct {
	ID          string         `yaml:"id" validate:"required,ident"`
	Target      string         `yaml:"target" validate:"required,ident"`
	Initial     string         `yaml:"initial" validate:"required,ident"`
	Strict      bool           `yaml:"strict,omitempty"`
	Vars        map[string]any `yaml:"vars,omitempty"`
	States      []State        `yaml:"states" validate:"required,min=1,dive"`
	Transitions []Transition   `yaml:"transitions,omitempty" validate:"omitempty,dive"`
}

// State is a machine state.
type State struct {
	ID          string             `yaml:"id" validate:"required,ident"`
	Style       map[string]float64 `yaml:"style,omitempty"`
	Enter       *Effect            `yaml:"enter,omitempty"`
	Exit        *Effect            `yaml:"exit,omitempty"`
	AutoAdvance string             `yaml:"auto_advance,omitempty" validate:"omitempty,duration"`
}

// Transition is a machine edge. From may be "*".
type Transition struct {
	From    string      `yaml:"from" validate:"required"`
	To      string      `yaml:"to" validate:"required,ident"`
	Event   string      `yaml:"event" validate:"required"`
	Effect  *Effect     `yaml:"effect,omitempty"`
	Async   bool        `yaml:"async,omitempty"`
	Guards  []Condition `yaml:"guards,omitempty" validate:"omitempty,dive"`
	Actions []CallStep  `yaml:"actions,omitempty" validate:"omitempty,dive"`
}

// SequenceMap builds a lookup table for sequences by ID.
func SequenceMap(sequences []Sequence) map[string]Sequence {
	out := make(map[string]Sequence, len(sequences))
	for _, seq := range sequences {
		out[seq.ID] = seq
	}
	return out
}
