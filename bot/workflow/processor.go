package workflow

import (
	"strconv"
	"strings"
)

// Processor dispatches a step definition to the behavior for its type and
// produces the StepResult of entering it. Input handling and transitions
// belong to the Executor.
type Processor struct{}

// Enter produces the result of arriving at a step.
func (p *Processor) Enter(wctx *Context, s *Step) StepResult {
	switch s.Type {
	case StepMessage:
		text := s.Prompt.Render(wctx)
		next, ok := ResolveNext(s.Next, wctx.Data)
		if !ok {
			return Complete(text, wctx.Data)
		}
		return StepResult{Kind: KindSendMessage, Message: text, Next: next, AutoAdvance: true}

	case StepInput:
		return SendMessage(s.Prompt.Render(wctx))

	case StepChoice:
		return StepResult{
			Kind:    KindSendMessage,
			Message: s.Prompt.Render(wctx),
			Choices: s.ResolveChoices(wctx),
		}

	case StepService:
		inv := &Invocation{
			Service:  s.Service.Service,
			Method:   s.Service.Method,
			Progress: s.Service.Progress,
		}
		if s.Service.Params != nil {
			inv.Params = s.Service.Params(wctx)
		}
		return StepResult{Kind: KindCallService, Invocation: inv}
	}

	return SendMessage(s.Prompt.Render(wctx))
}

// MatchChoice resolves raw input against a step's choice set, either by
// the choice's stored value (case-insensitive) or by 1-based ordinal
// position. The value, not the ordinal, is what gets stored.
func (p *Processor) MatchChoice(wctx *Context, s *Step, raw string) (Choice, bool) {
	choices := s.ResolveChoices(wctx)
	text := strings.TrimSpace(raw)

	for _, c := range choices {
		if strings.EqualFold(text, c.Value) || strings.EqualFold(text, c.Label) {
			return c, true
		}
	}

	if num, err := strconv.Atoi(text); err == nil && num >= 1 && num <= len(choices) {
		return choices[num-1], true
	}

	return Choice{}, false
}
