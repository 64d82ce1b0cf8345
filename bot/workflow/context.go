package workflow

import (
	"strings"
	"time"
)

// Context is the live execution state of one workflow activation.
// It is owned exclusively by its Executor and never shared across sessions.
type Context struct {
	WorkflowID WorkflowID     `json:"workflow_id" bson:"workflow_id"`
	Current    StepID         `json:"current_step" bson:"current_step"`
	Data       map[string]any `json:"data" bson:"data"`
	History    []StepID       `json:"history" bson:"history"`
	StartedAt  time.Time      `json:"started_at" bson:"started_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewContext creates a fresh context positioned at the workflow's first step.
func NewContext(workflowID WorkflowID, first StepID) *Context {
	now := time.Now()
	return &Context{
		WorkflowID: workflowID,
		Current:    first,
		Data:       make(map[string]any),
		History:    []StepID{first},
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Visit moves the context to a new step, appending it to the history.
func (c *Context) Visit(id StepID) {
	c.Current = id
	c.History = append(c.History, id)
	c.UpdatedAt = time.Now()
}

// Set stores a value in the data bag.
func (c *Context) Set(key string, value any) {
	if c.Data == nil {
		c.Data = make(map[string]any)
	}
	c.Data[key] = value
	c.UpdatedAt = time.Now()
}

// GetString retrieves a string value from the data bag.
func (c *Context) GetString(key string) string {
	if v, ok := c.Data[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// SeedData deep-copies values into the data bag without marking activity.
// A fresh activation receives the session's durable profile this way, so
// steps and conditions can reference data collected by earlier workflows
// (the onboarded phone number, for instance). Seeded keys are not
// collected keys: a restart leaves them in place.
func (c *Context) SeedData(data map[string]any) {
	if len(data) == 0 {
		return
	}
	if c.Data == nil {
		c.Data = make(map[string]any, len(data))
	}
	for k, v := range copyData(data) {
		c.Data[k] = v
	}
}

// Lookup resolves a dot-addressed path into the data bag. Intermediate
// segments must be maps; a missing segment returns ok=false.
func (c *Context) Lookup(path string) (any, bool) {
	return lookupPath(c.Data, path)
}

func lookupPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = data
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Expired reports whether the activation outlived the given timeout.
func (c *Context) Expired(timeout time.Duration, now time.Time) bool {
	if timeout <= 0 {
		return false
	}
	return now.Sub(c.UpdatedAt) > timeout
}

// Snapshot is an immutable copy of a context, restorable verbatim.
type Snapshot struct {
	WorkflowID WorkflowID     `json:"workflow_id" bson:"workflow_id"`
	Current    StepID         `json:"current_step" bson:"current_step"`
	Data       map[string]any `json:"data" bson:"data"`
	History    []StepID       `json:"history" bson:"history"`
	StartedAt  time.Time      `json:"started_at" bson:"started_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
}

// ToSnapshot deep-copies the context state.
func (c *Context) ToSnapshot() Snapshot {
	return Snapshot{
		WorkflowID: c.WorkflowID,
		Current:    c.Current,
		Data:       copyData(c.Data),
		History:    append([]StepID(nil), c.History...),
		StartedAt:  c.StartedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// Restore overwrites the context with the snapshot state.
func (c *Context) Restore(s Snapshot) {
	c.WorkflowID = s.WorkflowID
	c.Current = s.Current
	c.Data = copyData(s.Data)
	c.History = append([]StepID(nil), s.History...)
	c.StartedAt = s.StartedAt
	c.UpdatedAt = s.UpdatedAt
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if m, ok := v.(map[string]any); ok {
			out[k] = copyData(m)
			continue
		}
		out[k] = v
	}
	return out
}
