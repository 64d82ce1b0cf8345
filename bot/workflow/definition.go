package workflow

import "time"

// StepID is a unique identifier for a step within a workflow.
type StepID string

// WorkflowID is a unique identifier for a workflow.
type WorkflowID string

// StepType distinguishes the four step behaviors.
type StepType string

const (
	StepMessage StepType = "message"
	StepInput   StepType = "input"
	StepChoice  StepType = "choice"
	StepService StepType = "service"
)

// Prompt is either a static text or a function of the live context.
// Exactly one of the two fields is set; Func wins when both are.
type Prompt struct {
	Text string
	Func func(*Context) string
}

// Render resolves the prompt against the current context.
func (p Prompt) Render(c *Context) string {
	if p.Func != nil {
		return p.Func(c)
	}
	return p.Text
}

// Choice is one selectable option of a choice step. Value is what gets
// stored into the data bag; Label is what the user sees.
type Choice struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ServiceCall names a business service invocation for a service step.
// Params derives the call parameters from the collected data.
type ServiceCall struct {
	Service  string
	Method   string
	Params   func(*Context) map[string]any
	Progress string
}

// Step is one unit of interaction within a workflow definition.
type Step struct {
	ID   StepID
	Type StepType

	Prompt      Prompt
	Choices     []Choice
	ChoicesFunc func(*Context) []Choice

	// Validate applies to input and choice steps; nil means accept anything.
	Validate *Rule

	// StoreKey overrides the data-bag key for the collected value.
	// Defaults to the step id.
	StoreKey string

	// Service is required for service steps.
	Service *ServiceCall

	// Next resolves the following step. The zero value completes the workflow.
	Next Next

	// ErrorStep, when set on a service step, receives control after a
	// failed call instead of retrying the same step.
	ErrorStep StepID

	// RestartValue marks the choice value that triggers a full workflow
	// reset (all input/choice keys cleared, rewind to the first step).
	RestartValue string
}

// Key returns the data-bag key this step writes its value under.
func (s *Step) Key() string {
	if s.StoreKey != "" {
		return s.StoreKey
	}
	return string(s.ID)
}

// ResolveChoices returns the effective choice set for the current context.
func (s *Step) ResolveChoices(c *Context) []Choice {
	if s.ChoicesFunc != nil {
		return s.ChoicesFunc(c)
	}
	return s.Choices
}

// Definition is an immutable workflow loaded at startup.
type Definition struct {
	ID    WorkflowID
	Title string
	First StepID
	Steps map[StepID]*Step

	// Timeout after which a dangling activation is discarded.
	Timeout time.Duration

	// AllowInterrupt permits commands and back-navigation mid-workflow.
	AllowInterrupt bool

	// System workflows are hidden from the menu and run with top priority
	// (e.g. mandatory onboarding).
	System bool

	// BlockedCommands lists command names this workflow refuses even when
	// the command is otherwise allowed in workflows.
	BlockedCommands []string
}

// GetStep returns a step by its ID.
func (d *Definition) GetStep(id StepID) (*Step, bool) {
	s, ok := d.Steps[id]
	return s, ok
}

// CollectedKeys lists the data-bag keys written by input and choice steps.
// Used by the restart reset to clear exactly what the user entered.
func (d *Definition) CollectedKeys() []string {
	keys := make([]string, 0, len(d.Steps))
	for _, s := range d.Steps {
		if s.Type == StepInput || s.Type == StepChoice {
			keys = append(keys, s.Key())
		}
	}
	return keys
}

// Blocks reports whether the definition refuses the given command.
func (d *Definition) Blocks(command string) bool {
	for _, c := range d.BlockedCommands {
		if c == command {
			return true
		}
	}
	return false
}
