package actions

import (
	"fmt"
	"maps"
	"slices"

	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
)

// Source is the event source of events published by the emit action.
const Source = "actions"

// NewDefaultRegistry returns a registry holding the built-in actions: log,
// emit, break, increment and fail.
func NewDefaultRegistry(log *logger.Logger, bus *events.Bus) *Registry {
	r := NewRegistry(log)
	r.MustRegister("log", "write args.message to the log with the context variables", logAction(log))
	r.MustRegister("emit", "publish args.event with args.payload on the event bus", emitAction(bus))
	r.MustRegister("break", "stop the innermost loop after this step", breakAction)
	r.MustRegister("increment", "add args.by (default 1) to the numeric variable args.var", incrementAction)
	r.MustRegister("fail", "return an error carrying args.message", failAction)
	return r
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func logAction(log *logger.Logger) Func {
	return func(ctx *sequence.Context, args map[string]any) error {
		message := stringArg(args, "message")
		if message == "" {
			message = "sequence log"
		}
		kv := []any{"step", ctx.CurrentStepPath}
		for _, k := range slices.Sorted(maps.Keys(ctx.Vars)) {
			kv = append(kv, "var."+k, ctx.Vars[k])
		}
		log.Info(message, kv...)
		return nil
	}
}

func emitAction(bus *events.Bus) Func {
	return func(ctx *sequence.Context, args map[string]any) error {
		name := stringArg(args, "event")
		if name == "" {
			return fmt.Errorf("emit: args.event is required")
		}
		payload := map[string]any{"run_id": ctx.RunID, "step": ctx.CurrentStepPath}
		if extra, ok := args["payload"].(map[string]any); ok {
			maps.Copy(payload, extra)
		}
		bus.Publish(ports.Event{Type: name, Source: Source, Payload: payload})
		return nil
	}
}

func breakAction(ctx *sequence.Context, _ map[string]any) error {
	ctx.Break()
	return nil
}

func incrementAction(ctx *sequence.Context, args map[string]any) error {
	name := stringArg(args, "var")
	if name == "" {
		return fmt.Errorf("increment: args.var is required")
	}
	by := 1.0
	if v, ok := args["by"]; ok {
		f, ok := number(v)
		if !ok {
			return fmt.Errorf("increment: args.by must be a number, got %T", v)
		}
		by = f
	}
	current := 0.0
	if v, ok := ctx.Get(name); ok {
		f, ok := number(v)
		if !ok {
			return fmt.Errorf("increment: variable %q is not a number", name)
		}
		current = f
	}
	ctx.Set(name, current+by)
	return nil
}

func failAction(_ *sequence.Context, args map[string]any) error {
	message := stringArg(args, "message")
	if message == "" {
		message = "failed"
	}
	return fmt.Errorf("%s", message)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
