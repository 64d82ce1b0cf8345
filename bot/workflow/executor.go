package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"FiscoBot/internal/lib/sl"
)

// Executor runs one workflow activation for one session. It owns the
// Context exclusively; the caller drives it one inbound message at a time.
type Executor struct {
	def      *Definition
	wctx     *Context
	services *ServiceRegistry
	proc     *Processor
	log      *slog.Logger
}

// NewExecutor starts a fresh activation positioned at the first step.
func NewExecutor(def *Definition, services *ServiceRegistry, log *slog.Logger) *Executor {
	return &Executor{
		def:      def,
		wctx:     NewContext(def.ID, def.First),
		services: services,
		proc:     &Processor{},
		log:      log.With(sl.Module("workflow.executor"), slog.String("workflow_id", string(def.ID))),
	}
}

// Resume rebuilds an executor around a persisted context.
func Resume(def *Definition, wctx *Context, services *ServiceRegistry, log *slog.Logger) *Executor {
	e := NewExecutor(def, services, log)
	e.wctx = wctx
	return e
}

// Context returns the live activation state.
func (e *Executor) Context() *Context { return e.wctx }

// Definition returns the immutable workflow definition.
func (e *Executor) Definition() *Definition { return e.def }

// Start renders the first step.
func (e *Executor) Start() StepResult {
	return e.enterCurrent()
}

// ReEnter re-renders the current step without touching history. Used after
// back-navigation restores and when input arrives while a service call is
// still the current step.
func (e *Executor) ReEnter() StepResult {
	return e.enterCurrent()
}

// ProcessInput validates raw input against the current step, stores the
// value, resolves the transition and enters the next step. Validation
// failure re-prompts without advancing.
func (e *Executor) ProcessInput(raw string) StepResult {
	step, ok := e.def.GetStep(e.wctx.Current)
	if !ok {
		return StepResult{Err: fmt.Errorf("step not found: %s", e.wctx.Current)}
	}

	switch step.Type {
	case StepMessage, StepService:
		// Nothing to collect here; message steps never rest and a pending
		// service step just restates itself.
		return e.enterCurrent()

	case StepInput:
		res := Validate(raw, step.Validate)
		if !res.Valid {
			return ValidationError(res.Error)
		}
		e.wctx.Set(step.Key(), res.Sanitized)

	case StepChoice:
		choice, matched := e.proc.MatchChoice(e.wctx, step, raw)
		if !matched {
			return StepResult{
				Kind:    KindValidationError,
				Message: "Choix invalide. Veuillez sélectionner une des options proposées.",
				Choices: step.ResolveChoices(e.wctx),
			}
		}
		if step.RestartValue != "" && choice.Value == step.RestartValue {
			return e.Restart()
		}
		e.wctx.Set(step.Key(), choice.Value)
	}

	return e.advance(step)
}

// AdvanceTo moves to an already-resolved next step (the auto-advance path
// of message steps) and enters it.
func (e *Executor) AdvanceTo(next StepID) StepResult {
	if _, ok := e.def.GetStep(next); !ok {
		return StepResult{Err: fmt.Errorf("next step not found: %s", next)}
	}
	e.wctx.Visit(next)
	return e.enterCurrent()
}

// RunService dispatches a resolved invocation synchronously and feeds the
// outcome back in.
func (e *Executor) RunService(ctx context.Context, inv *Invocation) StepResult {
	if e.services == nil {
		return StepResult{Kind: KindCallService, Invocation: inv}
	}
	result, err := e.services.Call(ctx, inv.Service, inv.Method, inv.Params)
	return e.HandleServiceResult(result, err)
}

// HandleServiceResult applies a service outcome to the current service
// step: failure keeps the step current (or hands off to its declared
// error step); success stores the payload and resolves the transition.
func (e *Executor) HandleServiceResult(result map[string]any, callErr error) StepResult {
	step, ok := e.def.GetStep(e.wctx.Current)
	if !ok {
		return StepResult{Err: fmt.Errorf("step not found: %s", e.wctx.Current)}
	}

	if callErr != nil {
		e.log.With(
			slog.String("step_id", string(step.ID)),
			sl.Err(callErr),
		).Error("service call failed")

		if step.ErrorStep != "" {
			e.wctx.Visit(step.ErrorStep)
			return e.enterCurrent()
		}
		return StepResult{
			Kind:    KindServiceError,
			Message: "Une erreur technique est survenue. Veuillez réessayer dans quelques instants.",
		}
	}

	if result != nil {
		e.wctx.Set(step.Key(), result)
	}
	return e.advance(step)
}

// Restart performs a full reset: every data-bag key written by input and
// choice steps is cleared and the workflow rewinds to the first step.
// This is not a history pop.
func (e *Executor) Restart() StepResult {
	for _, k := range e.def.CollectedKeys() {
		delete(e.wctx.Data, k)
	}
	e.wctx.Current = e.def.First
	e.wctx.History = []StepID{e.def.First}
	return e.enterCurrent()
}

func (e *Executor) advance(from *Step) StepResult {
	next, ok := ResolveNext(from.Next, e.wctx.Data)
	if !ok {
		if len(from.Next.Cases) > 0 {
			// Authoring defect: conditions were declared but none matched.
			// Force-complete instead of crashing mid-conversation.
			e.log.With(
				slog.String("step_id", string(from.ID)),
			).Warn("no transition matched, completing workflow")
		}
		return Complete("", e.wctx.Data)
	}
	if _, exists := e.def.GetStep(next); !exists {
		return StepResult{Err: fmt.Errorf("next step not found: %s", next)}
	}
	e.wctx.Visit(next)
	return e.enterCurrent()
}

func (e *Executor) enterCurrent() StepResult {
	step, ok := e.def.GetStep(e.wctx.Current)
	if !ok {
		return StepResult{Err: fmt.Errorf("step not found: %s", e.wctx.Current)}
	}
	return e.proc.Enter(e.wctx, step)
}
