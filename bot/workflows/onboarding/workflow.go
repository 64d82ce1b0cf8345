package onboarding

import (
	"time"

	"FiscoBot/bot/workflow"
)

// ID is the onboarding workflow identifier.
const ID workflow.WorkflowID = "onboarding"

// Step identifiers.
const (
	StepHello    workflow.StepID = "hello"
	StepPhone    workflow.StepID = "phone"
	StepCheck    workflow.StepID = "check"
	StepName     workflow.StepID = "name"
	StepConfirm  workflow.StepID = "confirm"
	StepRegister workflow.StepID = "register"
	StepDone     workflow.StepID = "done"
)

// Data-bag keys.
const (
	KeyPhone = "phone"
	KeyName  = "name"
)

// New builds the mandatory verification workflow: phone, lookup, name for
// unknown users, confirmation, registration. It is a system workflow —
// hidden from the menu and not interruptible.
func New() *workflow.Definition {
	return &workflow.Definition{
		ID:      ID,
		Title:   "Vérification",
		First:   StepHello,
		System:  true,
		Timeout: 24 * time.Hour,
		Steps: map[workflow.StepID]*workflow.Step{
			StepHello: {
				ID:   StepHello,
				Type: workflow.StepMessage,
				Prompt: workflow.Prompt{
					Text: "Bienvenue sur FiscoBot ! 👋\nJe suis votre assistant fiscal. Pour commencer, je dois vérifier votre identité.",
				},
				Next: workflow.Fixed(StepPhone),
			},
			StepPhone: {
				ID:       StepPhone,
				Type:     workflow.StepInput,
				StoreKey: KeyPhone,
				Prompt: workflow.Prompt{
					Text: "Veuillez entrer votre numéro de téléphone au format international (ex. +237XXXXXXXXX) 📱",
				},
				Validate: &workflow.Rule{
					Required: true,
					Type:     workflow.TypePhone,
					Messages: map[string]string{
						"type": "❌ Numéro invalide. Réessayez au format +237XXXXXXXXX :",
					},
				},
				Next: workflow.Fixed(StepCheck),
			},
			StepCheck: {
				ID:   StepCheck,
				Type: workflow.StepService,
				Service: &workflow.ServiceCall{
					Service: "taxpayer",
					Method:  "lookup",
					Params: func(c *workflow.Context) map[string]any {
						return map[string]any{"phone": c.GetString(KeyPhone)}
					},
				},
				Next: workflow.Cases(
					workflow.Transition{
						When: &workflow.Condition{Path: "check.found", Op: workflow.OpEq, Value: true},
						To:   StepDone,
					},
					workflow.Transition{To: StepName},
				),
			},
			StepName: {
				ID:       StepName,
				Type:     workflow.StepInput,
				StoreKey: KeyName,
				Prompt: workflow.Prompt{
					Text: "Vous n'êtes pas encore enregistré. Quels sont vos nom et prénom ? 😊",
				},
				Validate: &workflow.Rule{
					Required:  true,
					MinLength: 2,
					Messages: map[string]string{
						"length": "Veuillez entrer un nom valide (au moins 2 caractères).",
					},
				},
				Next: workflow.Fixed(StepConfirm),
			},
			StepConfirm: {
				ID:     StepConfirm,
				Type:   workflow.StepChoice,
				Prompt: workflow.Prompt{Func: confirmPrompt},
				Choices: []workflow.Choice{
					{ID: "yes", Value: "confirm", Label: "✅ Oui, c'est correct"},
					{ID: "no", Value: "edit", Label: "✏️ Modifier mon nom"},
				},
				Next: workflow.Cases(
					workflow.Transition{
						When: &workflow.Condition{Path: "confirm", Op: workflow.OpEq, Value: "confirm"},
						To:   StepRegister,
					},
					workflow.Transition{To: StepName},
				),
			},
			StepRegister: {
				ID:   StepRegister,
				Type: workflow.StepService,
				Service: &workflow.ServiceCall{
					Service:  "taxpayer",
					Method:   "register",
					Progress: "Enregistrement en cours... ⏳",
					Params: func(c *workflow.Context) map[string]any {
						return map[string]any{
							"name":  c.GetString(KeyName),
							"phone": c.GetString(KeyPhone),
						}
					},
				},
				Next: workflow.Fixed(StepDone),
			},
			StepDone: {
				ID:     StepDone,
				Type:   workflow.StepMessage,
				Prompt: workflow.Prompt{Func: donePrompt},
			},
		},
	}
}
