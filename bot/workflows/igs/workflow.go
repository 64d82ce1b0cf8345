package igs

import (
	"time"

	"FiscoBot/bot/workflow"
)

// ID is the IGS calculator workflow identifier.
const ID workflow.WorkflowID = "igs_calculator"

// Step identifiers.
const (
	StepSector  workflow.StepID = "sector"
	StepRevenue workflow.StepID = "revenue"
	StepNotice  workflow.StepID = "regime_notice"
	StepCompute workflow.StepID = "compute"
	StepResult  workflow.StepID = "result"
	StepAgain   workflow.StepID = "again"
	StepError   workflow.StepID = "compute_error"
	StepBye     workflow.StepID = "bye"
)

// Data-bag keys.
const (
	KeySector  = "sector"
	KeyRevenue = "revenue"
)

// Revenue above this bound falls out of the informal brackets into the
// formal regime regardless of the declared sector.
const informalCeiling = 5_000_000

// New builds the IGS (impôt général synthétique) calculator workflow:
// sector, annual revenue, bracket resolution, computation service, result
// with a restart option.
func New() *workflow.Definition {
	return &workflow.Definition{
		ID:             ID,
		Title:          "Calculer mon IGS",
		First:          StepSector,
		Timeout:        30 * time.Minute,
		AllowInterrupt: true,
		Steps: map[workflow.StepID]*workflow.Step{
			StepSector: {
				ID:       StepSector,
				Type:     workflow.StepChoice,
				StoreKey: KeySector,
				Prompt: workflow.Prompt{
					Text: "Dans quel secteur exercez-vous votre activité ?",
				},
				Choices: []workflow.Choice{
					{ID: "formal", Value: "formal", Label: "🏢 Secteur formel"},
					{ID: "informal", Value: "informal", Label: "🛒 Secteur informel"},
				},
				Next: workflow.Fixed(StepRevenue),
			},
			StepRevenue: {
				ID:       StepRevenue,
				Type:     workflow.StepInput,
				StoreKey: KeyRevenue,
				Prompt:   workflow.Prompt{Func: revenuePrompt},
				Validate: &workflow.Rule{
					Required: true,
					Pattern:  `^\d+$`,
					Messages: map[string]string{
						"pattern": "❌ Veuillez entrer le montant en chiffres uniquement (ex. 500000) :",
					},
				},
				Next: workflow.Cases(
					workflow.Transition{
						When: &workflow.Condition{All: []workflow.Condition{
							{Path: KeySector, Op: workflow.OpEq, Value: "informal"},
							{Path: KeyRevenue, Op: workflow.OpGte, Value: informalCeiling},
						}},
						To: StepNotice,
					},
					workflow.Transition{To: StepCompute},
				),
			},
			StepNotice: {
				ID:   StepNotice,
				Type: workflow.StepMessage,
				Prompt: workflow.Prompt{
					Text: "ℹ️ Au-delà de 5 000 000 XAF de chiffre d'affaires, le régime du réel s'applique même pour le secteur informel.",
				},
				Next: workflow.Fixed(StepCompute),
			},
			StepCompute: {
				ID:        StepCompute,
				Type:      workflow.StepService,
				ErrorStep: StepError,
				Service: &workflow.ServiceCall{
					Service:  "taxcalc",
					Method:   "compute",
					Progress: "Calcul de votre IGS en cours... ⏳",
					Params: func(c *workflow.Context) map[string]any {
						return map[string]any{
							"sector":  c.GetString(KeySector),
							"revenue": c.GetString(KeyRevenue),
						}
					},
				},
				Next: workflow.Fixed(StepResult),
			},
			StepError: {
				ID:   StepError,
				Type: workflow.StepMessage,
				Prompt: workflow.Prompt{
					Text: "❌ Le calcul n'a pas abouti. Vérifions vos informations et réessayons.",
				},
				Next: workflow.Fixed(StepAgain),
			},
			StepResult: {
				ID:     StepResult,
				Type:   workflow.StepMessage,
				Prompt: workflow.Prompt{Func: resultPrompt},
				Next:   workflow.Fixed(StepAgain),
			},
			StepAgain: {
				ID:           StepAgain,
				Type:         workflow.StepChoice,
				RestartValue: "restart",
				Prompt: workflow.Prompt{
					Text: "Souhaitez-vous faire autre chose ?",
				},
				Choices: []workflow.Choice{
					{ID: "restart", Value: "restart", Label: "🔄 Refaire un calcul"},
					{ID: "finish", Value: "finish", Label: "✅ Terminer"},
				},
				Next: workflow.Cases(
					workflow.Transition{
						When: &workflow.Condition{Path: "again", Op: workflow.OpEq, Value: "finish"},
						To:   StepBye,
					},
				),
			},
			StepBye: {
				ID:   StepBye,
				Type: workflow.StepMessage,
				Prompt: workflow.Prompt{
					Text: "Merci d'avoir utilisé le calculateur IGS ! 🙏",
				},
			},
		},
	}
}
