package sequence

import (
	"fmt"
	"slices"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Kind identifies the type of a compiled block.
type Kind int

const (
	KindAnimate Kind = iota
	KindWait
	KindStagger
	KindParallel
	KindConditional
	KindLoop
	KindSetVar
	KindCall
	KindEmit
)

var kindNames = [...]string{"animate", "wait", "stagger", "parallel", "conditional", "loop", "set", "call", "emit"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Block is one compiled step. Container blocks reference their children by
// index into Program.Blocks: Parallel and Stagger hold one branch per child,
// Conditional holds [then, else] and Loop holds [body].
type Block struct {
	Index int
	Path  string
	Kind  Kind

	Target    string
	Effect    effect.Effect
	Duration  time.Duration
	Delay     time.Duration
	Direction Direction
	Predicate Predicate
	Loop      Loop
	Set       SetVar
	Call      Call
	Emit      Emit

	Branches [][]int
}

// Program is a validated, flattened step tree. It is immutable and may back
// any number of Sequence runs.
type Program struct {
	name    string
	blocks  []Block
	root    []int
	targets []string
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Blocks returns every compiled block in depth-first declaration order.
func (p *Program) Blocks() []Block { return slices.Clone(p.blocks) }

// Root returns the indices of the top-level blocks.
func (p *Program) Root() []int { return slices.Clone(p.root) }

// Targets returns the sorted names of the targets the program animates.
func (p *Program) Targets() []string { return slices.Clone(p.targets) }

// Block returns the block at index i.
func (p *Program) Block(i int) Block { return p.blocks[i] }

// Compile validates steps and flattens them into a Program. Every target a
// step names must appear in targets.
func Compile(name string, steps []Step, targets []string) (*Program, error) {
	if name == "" {
		return nil, mkerrors.NewConfigurationError("name", "sequence name is required", nil)
	}
	if len(steps) == 0 {
		return nil, mkerrors.NewConfigurationError("steps", "sequence has no steps", nil)
	}
	c := &compiler{
		program: &Program{name: name},
		known:   make(map[string]struct{}, len(targets)),
		used:    make(map[string]struct{}),
	}
	for _, t := range targets {
		c.known[t] = struct{}{}
	}
	root, err := c.list(steps, "", "steps")
	if err != nil {
		return nil, err
	}
	c.program.root = root
	for t := range c.used {
		c.program.targets = append(c.program.targets, t)
	}
	slices.Sort(c.program.targets)
	return c.program, nil
}

type compiler struct {
	program *Program
	known   map[string]struct{}
	used    map[string]struct{}
}

func joinPath(prefix string, parts ...any) string {
	out := prefix
	for _, p := range parts {
		s := fmt.Sprint(p)
		if out == "" {
			out = s
			continue
		}
		out += "." + s
	}
	return out
}

func (c *compiler) list(steps []Step, path, field string) ([]int, error) {
	indices := make([]int, 0, len(steps))
	for i, s := range steps {
		idx, err := c.step(s, joinPath(path, i), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func (c *compiler) add(b Block) int {
	b.Index = len(c.program.blocks)
	c.program.blocks = append(c.program.blocks, b)
	return b.Index
}

func (c *compiler) target(name, field string) error {
	if name == "" {
		return mkerrors.NewConfigurationError(field, "target is required", nil)
	}
	if _, ok := c.known[name]; !ok {
		return mkerrors.NewConfigurationError(field, fmt.Sprintf("references unknown target %q", name), nil)
	}
	c.used[name] = struct{}{}
	return nil
}

func validateEffect(e effect.Effect, field string) error {
	if e == nil {
		return mkerrors.NewConfigurationError(field, "effect is required", nil)
	}
	if err := e.Validate(); err != nil {
		return mkerrors.NewConfigurationError(field, fmt.Sprintf("invalid effect: %v", err), err)
	}
	return nil
}

func (c *compiler) step(s Step, path, field string) (int, error) {
	switch st := s.(type) {
	case Animate:
		if err := c.target(st.Target, field+".target"); err != nil {
			return 0, err
		}
		if err := validateEffect(st.Effect, field+".effect"); err != nil {
			return 0, err
		}
		return c.add(Block{Path: path, Kind: KindAnimate, Target: st.Target, Effect: st.Effect}), nil

	case Wait:
		if st.Duration < 0 {
			return 0, mkerrors.NewConfigurationError(field+".duration", fmt.Sprintf("must not be negative, got %s", st.Duration), nil)
		}
		return c.add(Block{Path: path, Kind: KindWait, Duration: st.Duration}), nil

	case Stagger:
		if len(st.Targets) == 0 {
			return 0, mkerrors.NewConfigurationError(field+".targets", "stagger needs at least one target", nil)
		}
		if st.Delay < 0 {
			return 0, mkerrors.NewConfigurationError(field+".delay", fmt.Sprintf("must not be negative, got %s", st.Delay), nil)
		}
		if !st.Direction.Valid() {
			return 0, mkerrors.NewConfigurationError(field+".direction", fmt.Sprintf("unknown direction %d", int(st.Direction)), nil)
		}
		if err := validateEffect(st.Effect, field+".effect"); err != nil {
			return 0, err
		}
		idx := c.add(Block{Path: path, Kind: KindStagger, Effect: st.Effect, Delay: st.Delay, Direction: st.Direction})
		branches := make([][]int, 0, len(st.Targets))
		for i, t := range st.Targets {
			if err := c.target(t, fmt.Sprintf("%s.targets[%d]", field, i)); err != nil {
				return 0, err
			}
			child := c.add(Block{Path: joinPath(path, i), Kind: KindAnimate, Target: t, Effect: st.Effect})
			branches = append(branches, []int{child})
		}
		c.program.blocks[idx].Branches = branches
		return idx, nil

	case Parallel:
		if len(st.Branches) == 0 {
			return 0, mkerrors.NewConfigurationError(field+".branches", "parallel needs at least one branch", nil)
		}
		idx := c.add(Block{Path: path, Kind: KindParallel})
		branches := make([][]int, 0, len(st.Branches))
		for i, branch := range st.Branches {
			branchField := fmt.Sprintf("%s.branches[%d]", field, i)
			if len(branch) == 0 {
				return 0, mkerrors.NewConfigurationError(branchField, "parallel branch is empty", nil)
			}
			children, err := c.list(branch, joinPath(path, i), branchField)
			if err != nil {
				return 0, err
			}
			branches = append(branches, children)
		}
		c.program.blocks[idx].Branches = branches
		return idx, nil

	case Conditional:
		if st.Predicate == nil {
			return 0, mkerrors.NewConfigurationError(field+".predicate", "predicate is required", nil)
		}
		idx := c.add(Block{Path: path, Kind: KindConditional, Predicate: st.Predicate})
		then, err := c.list(st.Then, joinPath(path, "then"), field+".then")
		if err != nil {
			return 0, err
		}
		otherwise, err := c.list(st.Else, joinPath(path, "else"), field+".else")
		if err != nil {
			return 0, err
		}
		c.program.blocks[idx].Branches = [][]int{then, otherwise}
		return idx, nil

	case Loop:
		if len(st.Body) == 0 {
			return 0, mkerrors.NewConfigurationError(field+".body", "loop body is empty", nil)
		}
		if st.Items == nil && st.ItemsFrom == nil && st.Repeat < 0 && st.Repeat != Forever {
			return 0, mkerrors.NewConfigurationError(field+".repeat", fmt.Sprintf("must not be negative, got %d", st.Repeat), nil)
		}
		if st.Items == nil && st.ItemsFrom == nil && st.Repeat == Forever && !consumesTime(st.Body) {
			return 0, mkerrors.NewConfigurationError(field+".body", "endless loop body never consumes time", nil)
		}
		idx := c.add(Block{Path: path, Kind: KindLoop, Loop: Loop{Var: st.Var, Items: st.Items, ItemsFrom: st.ItemsFrom, Repeat: st.Repeat}})
		body, err := c.list(st.Body, joinPath(path, "body"), field+".body")
		if err != nil {
			return 0, err
		}
		c.program.blocks[idx].Branches = [][]int{body}
		return idx, nil

	case SetVar:
		if st.Name == "" {
			return 0, mkerrors.NewConfigurationError(field+".name", "variable name is required", nil)
		}
		return c.add(Block{Path: path, Kind: KindSetVar, Set: st}), nil

	case Call:
		if st.Fn == nil {
			return 0, mkerrors.NewConfigurationError(field+".fn", "call step needs a function", nil)
		}
		return c.add(Block{Path: path, Kind: KindCall, Call: st}), nil

	case Emit:
		if st.Event == "" {
			return 0, mkerrors.NewConfigurationError(field+".event", "event name is required", nil)
		}
		return c.add(Block{Path: path, Kind: KindEmit, Emit: st}), nil

	case nil:
		return 0, mkerrors.NewConfigurationError(field, "step is nil", nil)
	default:
		return 0, mkerrors.NewConfigurationError(field, fmt.Sprintf("unsupported step type %T", s), nil)
	}
}

// consumesTime reports whether a step list can take time on its own. Call,
// SetVar and Emit never do; a Wait does when positive.
func consumesTime(steps []Step) bool {
	for _, s := range steps {
		switch st := s.(type) {
		case Animate, Stagger:
			return true
		case Wait:
			if st.Duration > 0 {
				return true
			}
		case Parallel:
			for _, b := range st.Branches {
				if consumesTime(b) {
					return true
				}
			}
		case Conditional:
			if consumesTime(st.Then) && consumesTime(st.Else) {
				return true
			}
		case Loop:
			if consumesTime(st.Body) {
				return true
			}
		}
	}
	return false
}

// Estimate returns the nominal playback length of the program, ignoring
// motion adaptation. Conditionals count their longer branch, loops over
// ItemsFrom count one iteration and endless loops report ok=false.
func (p *Program) Estimate() (time.Duration, bool) {
	return p.estimateList(p.root)
}

func (p *Program) estimateList(indices []int) (time.Duration, bool) {
	var total time.Duration
	for _, i := range indices {
		d, ok := p.estimateBlock(p.blocks[i])
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

func (p *Program) estimateBlock(b Block) (time.Duration, bool) {
	switch b.Kind {
	case KindAnimate:
		return b.Effect.Options(nil).Duration, true
	case KindWait:
		return b.Duration, true
	case KindStagger:
		offsets := StaggerOffsets(len(b.Branches), b.Delay, b.Direction)
		var longest time.Duration
		for i, branch := range b.Branches {
			d, _ := p.estimateList(branch)
			longest = max(longest, offsets[i]+d)
		}
		return longest, true
	case KindParallel, KindConditional:
		var longest time.Duration
		for _, branch := range b.Branches {
			d, ok := p.estimateList(branch)
			if !ok {
				return 0, false
			}
			longest = max(longest, d)
		}
		return longest, true
	case KindLoop:
		body, ok := p.estimateList(b.Branches[0])
		if !ok {
			return 0, false
		}
		switch {
		case b.Loop.ItemsFrom != nil:
			return body, true
		case b.Loop.Items != nil:
			return body * time.Duration(len(b.Loop.Items)), true
		case b.Loop.Repeat == Forever:
			return 0, false
		default:
			return body * time.Duration(b.Loop.Repeat), true
		}
	default:
		return 0, true
	}
}
