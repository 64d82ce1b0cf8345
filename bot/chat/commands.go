package chat

import "FiscoBot/bot/workflow"

// CommandType identifies a system command.
type CommandType string

const (
	CmdMenu     CommandType = "menu"
	CmdCancel   CommandType = "cancel"
	CmdBack     CommandType = "back"
	CmdLanguage CommandType = "language"
	CmdHelp     CommandType = "help"
)

// Eligibility decides where a command may run.
type Eligibility struct {
	// Always allows the command in every state.
	Always bool
	// WorkflowOnly restricts the command to active workflows.
	WorkflowOnly bool
	// PerWorkflow is an explicit allow/deny table, consulted before the
	// general rule when the active workflow is listed.
	PerWorkflow map[workflow.WorkflowID]bool
}

// Command is one system command with its synonym tokens and eligibility.
type Command struct {
	Type     CommandType
	Arg      string // fixed argument, e.g. the language code of "fr"
	Synonyms []string
	Allow    Eligibility
}

// CommandRouter detects system commands ahead of workflow/AI dispatch.
// Detection is a single dictionary lookup on the entire normalized input;
// substrings never match.
type CommandRouter struct {
	index map[string]*Command
}

// NewCommandRouter builds a router over the given command set.
func NewCommandRouter(commands []*Command) *CommandRouter {
	index := make(map[string]*Command)
	for _, c := range commands {
		for _, syn := range c.Synonyms {
			index[NormalizeInput(syn)] = c
		}
	}
	return &CommandRouter{index: index}
}

// DefaultCommands is the standard command dictionary.
func DefaultCommands() []*Command {
	return []*Command{
		{
			Type:     CmdMenu,
			Synonyms: []string{"menu", "accueil", "home"},
			Allow:    Eligibility{Always: true},
		},
		{
			Type:     CmdCancel,
			Synonyms: []string{"annuler", "cancel", "stop", "quitter"},
			Allow:    Eligibility{WorkflowOnly: true},
		},
		{
			Type:     CmdBack,
			Synonyms: []string{"retour", "back", "precedent", "précédent"},
			Allow:    Eligibility{WorkflowOnly: true},
		},
		{
			Type:     CmdLanguage,
			Arg:      "fr",
			Synonyms: []string{"français", "francais", "fr"},
			Allow:    Eligibility{Always: true},
		},
		{
			Type:     CmdLanguage,
			Arg:      "en",
			Synonyms: []string{"english", "anglais", "en"},
			Allow:    Eligibility{Always: true},
		},
		{
			Type:     CmdHelp,
			Synonyms: []string{"aide", "help", "?"},
			Allow:    Eligibility{Always: true},
		},
	}
}

// Detect looks the normalized input up in the synonym dictionary.
func (r *CommandRouter) Detect(input string) (*Command, bool) {
	c, ok := r.index[NormalizeInput(input)]
	return c, ok
}

// Allowed enforces the command's eligibility in the given state. The
// active workflow definition (nil when none) may veto commands that are
// otherwise allowed.
func (r *CommandRouter) Allowed(c *Command, state BotState, active *workflow.Definition) bool {
	if active != nil {
		if allowed, listed := c.Allow.PerWorkflow[active.ID]; listed {
			return allowed
		}
		if active.Blocks(string(c.Type)) {
			return false
		}
		if state.InWorkflow() && !active.AllowInterrupt && !c.Allow.Always {
			return false
		}
	}

	if c.Allow.Always {
		if active != nil && active.Blocks(string(c.Type)) {
			return false
		}
		return true
	}
	if c.Allow.WorkflowOnly {
		return state.InWorkflow()
	}
	return !state.InWorkflow()
}
