package sequence

import (
	"fmt"
	"maps"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// fiber walks one list of blocks. The root list, every Parallel and Stagger
// branch, the chosen Conditional branch and each Loop iteration run on their
// own fiber. A fiber consumes the time it is given and hands back whatever
// is left once its last block completes.
type fiber struct {
	blocks []int
	pos    int
	delay  time.Duration
	active *activation
	inLoop bool
	halted bool
}

type activation struct {
	block     *Block
	startedAt time.Duration
	failed    bool

	binding *binding
	anim    effect.Animation

	remaining time.Duration

	children []*fiber
	finished []bool

	items     []any
	count     int
	iteration int
	body      *fiber
}

// offset is the playback time at which the current fiber position is being
// evaluated, given the time still unconsumed in this tick.
func (s *Sequence) offset(left time.Duration) time.Duration {
	return s.elapsed - left
}

func (s *Sequence) advanceFiber(f *fiber, dt time.Duration) (time.Duration, bool) {
	if f.delay > 0 {
		if dt < f.delay {
			f.delay -= dt
			return 0, false
		}
		dt -= f.delay
		f.delay = 0
	}
	for {
		if f.halted || f.pos >= len(f.blocks) {
			return dt, true
		}
		if f.active == nil {
			f.active = s.activate(&s.program.blocks[f.blocks[f.pos]], f, dt)
		}
		left, done := s.advanceBlock(f.active, dt)
		if s.status != StatusRunning {
			return 0, false
		}
		if !done {
			return 0, false
		}
		s.complete(f.active, left)
		f.active = nil
		f.pos++
		dt = left
		if s.ctx.breakRequested {
			if f.inLoop {
				return dt, true
			}
			s.ctx.breakRequested = false
		}
	}
}

func child(blocks []int, parent *fiber) *fiber {
	return &fiber{blocks: blocks, inLoop: parent.inLoop}
}

func (s *Sequence) activate(b *Block, f *fiber, left time.Duration) *activation {
	a := &activation{block: b, startedAt: s.offset(left)}
	s.ctx.CurrentStepPath = b.Path
	s.publishStep(ports.EventStepStarted, b, a.startedAt, nil)

	switch b.Kind {
	case KindAnimate:
		a.binding = s.targets[b.Target]
		a.anim = s.prepare(b, b.Effect, a.binding.values, a.startedAt).Start(a.binding.values)

	case KindWait:
		a.remaining = b.Duration

	case KindStagger:
		s.activateStagger(a, f)

	case KindParallel:
		for _, branch := range b.Branches {
			a.children = append(a.children, child(branch, f))
		}
		a.finished = make([]bool, len(a.children))

	case KindConditional:
		branch := b.Branches[1]
		taken := "else"
		if s.evaluate(b) {
			branch = b.Branches[0]
			taken = "then"
		}
		s.log.Debug("conditional evaluated", "step", b.Path, "branch", taken)
		a.body = child(branch, f)

	case KindLoop:
		a.count = b.Loop.Repeat
		switch {
		case b.Loop.ItemsFrom != nil:
			a.items = s.items(b)
			a.count = len(a.items)
		case b.Loop.Items != nil:
			a.items = b.Loop.Items
			a.count = len(a.items)
		}

	case KindSetVar:
		value := b.Set.Value
		if b.Set.Compute != nil {
			value = b.Set.Compute(s.ctx)
		}
		s.ctx.Set(b.Set.Name, value)

	case KindCall:
		if err := s.invoke(b.Call.Fn); err != nil {
			s.fail(a, f, err)
		}

	case KindEmit:
		payload := maps.Clone(b.Emit.Payload)
		if payload == nil {
			payload = make(map[string]any, 2)
		}
		payload["run_id"] = s.ctx.RunID
		payload["step"] = b.Path
		s.publish(b.Emit.Event, payload)
	}
	return a
}

func (s *Sequence) activateStagger(a *activation, f *fiber) {
	b := a.block
	offsets := StaggerOffsets(len(b.Branches), b.Delay, b.Direction)

	if s.adapter != nil {
		first := s.program.blocks[b.Branches[0][0]]
		adj := s.adapter.Adapt(b.Effect.Options(s.targets[first.Target].values))
		if !adj.ShouldAnimate {
			for _, branch := range b.Branches {
				leaf := &s.program.blocks[branch[0]]
				target := s.targets[leaf.Target]
				target.values = target.values.Merge(b.Effect.Final(target.values))
				s.apply(target)
			}
			s.publishStep(ports.EventStepSkipped, b, a.startedAt, map[string]any{"reason": adj.Reason})
			return
		}
		offsets = scaleOffsets(offsets, adj.SpeedMultiplier)
	}

	a.finished = make([]bool, len(b.Branches))
	for i, branch := range b.Branches {
		fb := child(branch, f)
		fb.delay = offsets[i]
		a.children = append(a.children, fb)
	}
}

func (s *Sequence) evaluate(b *Block) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(fmt.Errorf("panic: %v", r), "conditional predicate panicked", "step", b.Path)
			ok = false
		}
	}()
	return b.Predicate(s.ctx)
}

func (s *Sequence) items(b *Block) (items []any) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(fmt.Errorf("panic: %v", r), "loop items panicked", "step", b.Path)
			items = nil
		}
	}()
	return b.Loop.ItemsFrom(s.ctx)
}

func (s *Sequence) invoke(fn CallFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(s.ctx)
}

func (s *Sequence) fail(a *activation, f *fiber, err error) {
	a.failed = true
	stepErr := mkerrors.NewStepError(s.Name()+"/"+a.block.Path, err)
	s.ctx.Errors = append(s.ctx.Errors, stepErr)
	s.log.Warn("call step failed", "step", a.block.Path, "call", a.block.Call.Name, "error", err)
	s.publishStep(ports.EventStepFailed, a.block, a.startedAt, map[string]any{
		"call":  a.block.Call.Name,
		"error": stepErr,
	})
	if s.haltOnError {
		f.halted = true
	}
}

// prepare passes an effect through the motion adapter and reports the
// decision.
func (s *Sequence) prepare(b *Block, e effect.Effect, from effect.Props, at time.Duration) effect.Effect {
	if s.adapter == nil {
		return e
	}
	adj := s.adapter.Adapt(e.Options(from))
	switch {
	case !adj.ShouldAnimate:
		s.publishStep(ports.EventStepSkipped, b, at, map[string]any{"reason": adj.Reason})
	case adj.ShouldUseAlternative:
		s.publishStep(ports.EventStepSubstituted, b, at, map[string]any{
			"reason":      adj.Reason,
			"alternative": adj.Alternative.String(),
		})
	}
	return e.Adapt(adj)
}

func (s *Sequence) advanceBlock(a *activation, dt time.Duration) (time.Duration, bool) {
	switch a.block.Kind {
	case KindAnimate:
		frame := a.anim.Tick(dt)
		a.binding.values = a.binding.values.Merge(frame.Values)
		s.apply(a.binding)
		if !frame.Done {
			return 0, false
		}
		return min(frame.Overflow, dt), true

	case KindWait:
		if dt < a.remaining {
			a.remaining -= dt
			return 0, false
		}
		left := dt - a.remaining
		a.remaining = 0
		return left, true

	case KindParallel, KindStagger:
		left, done := dt, true
		for i, fb := range a.children {
			if a.finished[i] {
				continue
			}
			childLeft, childDone := s.advanceFiber(fb, dt)
			if s.status != StatusRunning {
				return 0, false
			}
			if childDone {
				a.finished[i] = true
				left = min(left, childLeft)
				continue
			}
			done = false
		}
		if !done {
			return 0, false
		}
		return left, true

	case KindConditional:
		return s.advanceFiber(a.body, dt)

	case KindLoop:
		return s.advanceLoop(a, dt)

	default:
		return dt, true
	}
}

func (s *Sequence) advanceLoop(a *activation, dt time.Duration) (time.Duration, bool) {
	b := a.block
	for {
		if a.body == nil {
			if a.count != Forever && a.iteration >= a.count {
				return dt, true
			}
			if b.Loop.Var != "" {
				if a.items != nil {
					s.ctx.Set(b.Loop.Var, a.items[a.iteration])
				} else {
					s.ctx.Set(b.Loop.Var, a.iteration)
				}
			}
			a.body = &fiber{blocks: b.Branches[0], inLoop: true}
		}
		start := dt
		left, done := s.advanceFiber(a.body, dt)
		if s.status != StatusRunning || !done {
			return 0, false
		}
		a.body = nil
		a.iteration++
		if s.ctx.breakRequested {
			s.ctx.breakRequested = false
			s.log.Debug("loop break", "step", b.Path, "iteration", a.iteration)
			return left, true
		}
		if a.count == Forever && left == start {
			// The iteration took no time; resume on the next tick.
			return 0, false
		}
		dt = left
	}
}

func (s *Sequence) complete(a *activation, left time.Duration) {
	if a.failed {
		return
	}
	var extra map[string]any
	if a.block.Kind == KindLoop {
		extra = map[string]any{"iterations": a.iteration}
	}
	s.publishStep(ports.EventStepCompleted, a.block, s.offset(left), extra)
}

func (s *Sequence) publishStep(eventType string, b *Block, at time.Duration, extra map[string]any) {
	s.cursor = at
	payload := map[string]any{
		"run_id": s.ctx.RunID,
		"step":   b.Path,
		"kind":   b.Kind.String(),
		"offset": at,
	}
	if b.Target != "" {
		payload["target"] = b.Target
	}
	maps.Copy(payload, extra)
	s.bus.Publish(ports.Event{
		Type:      eventType,
		Source:    s.Name(),
		Timestamp: s.now.Add(at - s.elapsed),
		Payload:   payload,
	})
}
