package sequence

import (
	"maps"
	"time"
)

// Context is the mutable state of one sequence run. It is created when a
// run starts and discarded on reset or restart.
type Context struct {
	Vars            map[string]any
	CurrentStepPath string
	StartTime       time.Time
	Status          Status
	RunID           string
	Errors          []error

	breakRequested bool
}

func newContext(vars map[string]any, runID string, start time.Time) *Context {
	ctx := &Context{Vars: make(map[string]any, len(vars)), RunID: runID, StartTime: start, Status: StatusRunning}
	maps.Copy(ctx.Vars, vars)
	return ctx
}

// Get returns a variable.
func (c *Context) Get(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.Vars[name]
	return v, ok
}

// Set assigns a variable.
func (c *Context) Set(name string, value any) {
	if c.Vars == nil {
		c.Vars = make(map[string]any)
	}
	c.Vars[name] = value
}

// Break asks the innermost running loop to stop after the current step.
// Outside a loop the request is dropped when the step completes.
func (c *Context) Break() { c.breakRequested = true }

// Breaking reports whether a break is pending.
func (c *Context) Breaking() bool { return c != nil && c.breakRequested }
