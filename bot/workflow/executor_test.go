package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// quoteDefinition is a small billing conversation exercising every step
// type: welcome, a sector choice, a revenue input, a service call, a
// rendered result and a restart/finish choice.
func quoteDefinition(errorStep StepID) *Definition {
	return &Definition{
		ID:    "quote_flow",
		Title: "Obtenir un devis",
		First: "welcome",
		Steps: map[StepID]*Step{
			"welcome": {
				ID:     "welcome",
				Type:   StepMessage,
				Prompt: Prompt{Text: "Bienvenue !"},
				Next:   Fixed("sector"),
			},
			"sector": {
				ID:     "sector",
				Type:   StepChoice,
				Prompt: Prompt{Text: "Votre secteur ?"},
				Choices: []Choice{
					{ID: "formal", Value: "formal", Label: "Secteur formel"},
					{ID: "informal", Value: "informal", Label: "Secteur informel"},
				},
				Next: Fixed("revenue"),
			},
			"revenue": {
				ID:     "revenue",
				Type:   StepInput,
				Prompt: Prompt{Text: "Votre chiffre d'affaires ?"},
				Validate: &Rule{
					Required: true,
					Pattern:  `^\d+$`,
				},
				Next: Cases(
					Transition{When: &Condition{Path: "revenue", Op: OpGte, Value: 1000000}, To: "notice"},
					Transition{To: "quote"},
				),
			},
			"notice": {
				ID:     "notice",
				Type:   StepMessage,
				Prompt: Prompt{Text: "Montant élevé, traitement particulier."},
				Next:   Fixed("quote"),
			},
			"quote": {
				ID:   "quote",
				Type: StepService,
				Service: &ServiceCall{
					Service:  "billing",
					Method:   "quote",
					Progress: "Calcul en cours...",
					Params: func(c *Context) map[string]any {
						return map[string]any{"revenue": c.GetString("revenue")}
					},
				},
				ErrorStep: errorStep,
				Next:      Fixed("result"),
			},
			"result": {
				ID:   "result",
				Type: StepMessage,
				Prompt: Prompt{Func: func(c *Context) string {
					amount, _ := c.Lookup("quote.amount")
					return fmt.Sprintf("Montant : %v", amount)
				}},
				Next: Fixed("again"),
			},
			"again": {
				ID:     "again",
				Type:   StepChoice,
				Prompt: Prompt{Text: "Recommencer ?"},
				Choices: []Choice{
					{ID: "restart", Value: "restart", Label: "Recommencer"},
					{ID: "finish", Value: "finish", Label: "Terminer"},
				},
				RestartValue: "restart",
				Next: Cases(
					Transition{When: &Condition{Path: "again", Op: OpEq, Value: "finish"}, To: "bye"},
				),
			},
			"bye": {
				ID:     "bye",
				Type:   StepMessage,
				Prompt: Prompt{Text: "Au revoir !"},
			},
			"failed": {
				ID:     "failed",
				Type:   StepMessage,
				Prompt: Prompt{Text: "Le calcul a échoué."},
				Next:   Fixed("again"),
			},
		},
	}
}

func quoteServices(t *testing.T) *ServiceRegistry {
	t.Helper()
	reg := NewServiceRegistry()
	reg.Register("billing", ServiceFunc(func(_ context.Context, method string, params map[string]any) (map[string]any, error) {
		require.Equal(t, "quote", method)
		return map[string]any{"amount": 30000.0}, nil
	}))
	return reg
}

// runToService drives a fresh executor up to the pending service call.
func runToService(t *testing.T, exec *Executor, revenue string) StepResult {
	t.Helper()

	res := exec.Start()
	require.Equal(t, KindSendMessage, res.Kind)
	assert.True(t, res.AutoAdvance)
	assert.Equal(t, StepID("sector"), res.Next)

	res = exec.AdvanceTo(res.Next)
	require.Equal(t, KindSendMessage, res.Kind)
	require.Len(t, res.Choices, 2)

	res = exec.ProcessInput("Secteur informel")
	require.Equal(t, KindSendMessage, res.Kind)

	res = exec.ProcessInput(revenue)
	return res
}

func TestExecutorHappyPath(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())

	res := runToService(t, exec, "500000")
	require.Equal(t, KindCallService, res.Kind)
	require.NotNil(t, res.Invocation)
	assert.Equal(t, "billing", res.Invocation.Service)
	assert.Equal(t, "Calcul en cours...", res.Invocation.Progress)
	assert.Equal(t, map[string]any{"revenue": "500000"}, res.Invocation.Params)

	res = exec.RunService(context.Background(), res.Invocation)
	require.Equal(t, KindSendMessage, res.Kind)
	assert.Equal(t, "Montant : 30000", res.Message)
	assert.Equal(t, StepID("again"), res.Next)

	// The service payload landed under the step key.
	amount, ok := exec.Context().Lookup("quote.amount")
	require.True(t, ok)
	assert.Equal(t, 30000.0, amount)

	res = exec.AdvanceTo(res.Next)
	require.Equal(t, KindSendMessage, res.Kind)

	// "bye" has no next: entering the terminal message completes the
	// workflow with its text as the final message.
	res = exec.ProcessInput("2")
	require.Equal(t, KindComplete, res.Kind)
	assert.Equal(t, "Au revoir !", res.Message)
	assert.Equal(t, "finish", exec.Context().GetString("again"))
}

func TestExecutorConditionalBranch(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())

	res := runToService(t, exec, "2000000")
	require.Equal(t, KindSendMessage, res.Kind)
	assert.Equal(t, "Montant élevé, traitement particulier.", res.Message)
	assert.Equal(t, StepID("quote"), res.Next)
}

func TestExecutorValidationFailureKeepsState(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())
	exec.Start()
	exec.AdvanceTo("sector")
	exec.ProcessInput("informal")

	before := exec.Context().ToSnapshot()

	res := exec.ProcessInput("pas un nombre")
	require.Equal(t, KindValidationError, res.Kind)
	assert.NotEmpty(t, res.Message)

	after := exec.Context().ToSnapshot()
	assert.Equal(t, before.Current, after.Current)
	assert.Equal(t, before.Data, after.Data)
	assert.Equal(t, before.History, after.History)
}

func TestExecutorInvalidChoiceReprompts(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())
	exec.Start()
	exec.AdvanceTo("sector")

	res := exec.ProcessInput("7")
	require.Equal(t, KindValidationError, res.Kind)
	assert.Len(t, res.Choices, 2, "re-prompt repeats the options")
	assert.Equal(t, StepID("sector"), exec.Context().Current)
}

func TestExecutorChoiceMatching(t *testing.T) {
	def := quoteDefinition("")
	for _, input := range []string{"informal", "INFORMAL", "Secteur informel", "2"} {
		exec := NewExecutor(def, quoteServices(t), testLogger())
		exec.Start()
		exec.AdvanceTo("sector")

		res := exec.ProcessInput(input)
		require.Equal(t, KindSendMessage, res.Kind, "input %q", input)
		assert.Equal(t, "informal", exec.Context().GetString("sector"), "input %q", input)
	}
}

func TestExecutorServiceErrorNoErrorStep(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), nil, testLogger())

	res := runToService(t, exec, "500000")
	require.Equal(t, KindCallService, res.Kind)

	before := exec.Context().ToSnapshot()

	res = exec.HandleServiceResult(nil, fmt.Errorf("billing unavailable"))
	require.Equal(t, KindServiceError, res.Kind)
	assert.NotEmpty(t, res.Message)

	// The step stays current and the context is untouched, so the next
	// message retries the same call.
	after := exec.Context().ToSnapshot()
	assert.Equal(t, StepID("quote"), after.Current)
	assert.Equal(t, before.Data, after.Data)
	assert.Equal(t, before.History, after.History)
}

func TestExecutorServiceErrorWithErrorStep(t *testing.T) {
	exec := NewExecutor(quoteDefinition("failed"), nil, testLogger())

	res := runToService(t, exec, "500000")
	require.Equal(t, KindCallService, res.Kind)

	res = exec.HandleServiceResult(nil, fmt.Errorf("billing unavailable"))
	require.Equal(t, KindSendMessage, res.Kind)
	assert.Equal(t, "Le calcul a échoué.", res.Message)
	assert.Equal(t, StepID("failed"), exec.Context().Current)
}

func TestExecutorRestartClearsCollectedKeys(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())

	res := runToService(t, exec, "500000")
	res = exec.RunService(context.Background(), res.Invocation)
	exec.AdvanceTo(res.Next)

	res = exec.ProcessInput("restart")
	require.Equal(t, KindSendMessage, res.Kind)
	assert.Equal(t, "Bienvenue !", res.Message)

	wctx := exec.Context()
	assert.Equal(t, StepID("welcome"), wctx.Current)
	assert.Equal(t, []StepID{"welcome"}, wctx.History)

	// Every input and choice key is gone; restart is a full reset, not a
	// history pop.
	_, ok := wctx.Data["sector"]
	assert.False(t, ok)
	_, ok = wctx.Data["revenue"]
	assert.False(t, ok)
	_, ok = wctx.Data["again"]
	assert.False(t, ok)
}

func TestExecutorUnmatchedCasesCompletes(t *testing.T) {
	exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())

	res := runToService(t, exec, "500000")
	res = exec.RunService(context.Background(), res.Invocation)
	exec.AdvanceTo(res.Next)

	// "finish" is the only declared case; an unforeseen stored value would
	// not match. Force one through the data bag and advance.
	step, _ := exec.Definition().GetStep("again")
	exec.Context().Set(step.Key(), "autre")
	res = exec.advance(step)
	require.Equal(t, KindComplete, res.Kind)
}

func TestExecutorDeterministicReplay(t *testing.T) {
	inputs := []string{"informal", "750000"}

	run := func() Snapshot {
		exec := NewExecutor(quoteDefinition(""), quoteServices(t), testLogger())
		exec.Start()
		exec.AdvanceTo("sector")
		for _, in := range inputs {
			exec.ProcessInput(in)
		}
		return exec.Context().ToSnapshot()
	}

	a := run()
	b := run()
	assert.Equal(t, a.Current, b.Current)
	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.History, b.History)
}
