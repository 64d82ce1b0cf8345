package registration

import (
	"fmt"
	"time"

	"FiscoBot/bot/workflow"
)

// ID is the taxpayer registration workflow identifier.
const ID workflow.WorkflowID = "taxpayer_registration"

// Step identifiers.
const (
	StepIntro    workflow.StepID = "intro"
	StepName     workflow.StepID = "name"
	StepEmail    workflow.StepID = "email"
	StepRegion   workflow.StepID = "region"
	StepRegister workflow.StepID = "register"
	StepDone     workflow.StepID = "done"
)

// New builds the guided identity-registration form: name, e-mail, region,
// then the registration service call.
func New() *workflow.Definition {
	return &workflow.Definition{
		ID:             ID,
		Title:          "M'enregistrer comme contribuable",
		First:          StepIntro,
		Timeout:        30 * time.Minute,
		AllowInterrupt: true,
		Steps: map[workflow.StepID]*workflow.Step{
			StepIntro: {
				ID:   StepIntro,
				Type: workflow.StepMessage,
				Prompt: workflow.Prompt{
					Text: "📝 Enregistrons votre dossier contribuable. Cela ne prend que quelques instants.",
				},
				Next: workflow.Fixed(StepName),
			},
			StepName: {
				ID:   StepName,
				Type: workflow.StepInput,
				Prompt: workflow.Prompt{
					Text: "Quels sont vos nom et prénom ?",
				},
				Validate: &workflow.Rule{
					Required:  true,
					MinLength: 2,
					MaxLength: 120,
				},
				Next: workflow.Fixed(StepEmail),
			},
			StepEmail: {
				ID:   StepEmail,
				Type: workflow.StepInput,
				Prompt: workflow.Prompt{
					Text: "Quelle est votre adresse e-mail ? (laissez vide pour passer)",
				},
				Validate: &workflow.Rule{
					Type: workflow.TypeEmail,
					Messages: map[string]string{
						"type": "❌ Adresse e-mail invalide. Réessayez :",
					},
				},
				Next: workflow.Fixed(StepRegion),
			},
			StepRegion: {
				ID:   StepRegion,
				Type: workflow.StepChoice,
				Prompt: workflow.Prompt{
					Text: "Dans quelle région êtes-vous établi ?",
				},
				Choices: []workflow.Choice{
					{ID: "centre", Value: "Centre", Label: "Centre"},
					{ID: "littoral", Value: "Littoral", Label: "Littoral"},
					{ID: "ouest", Value: "Ouest", Label: "Ouest"},
					{ID: "nord", Value: "Nord", Label: "Nord"},
					{ID: "autre", Value: "Autre", Label: "Autre"},
				},
				Next: workflow.Fixed(StepRegister),
			},
			StepRegister: {
				ID:   StepRegister,
				Type: workflow.StepService,
				Service: &workflow.ServiceCall{
					Service:  "taxpayer",
					Method:   "register",
					Progress: "Création de votre dossier... ⏳",
					Params: func(c *workflow.Context) map[string]any {
						params := map[string]any{
							"name":   c.GetString("name"),
							"phone":  c.GetString("phone"),
							"region": c.GetString("region"),
						}
						if email := c.GetString("email"); email != "" && email != "-" {
							params["email"] = email
						}
						return params
					},
				},
				Next: workflow.Fixed(StepDone),
			},
			StepDone: {
				ID:   StepDone,
				Type: workflow.StepMessage,
				Prompt: workflow.Prompt{Func: func(c *workflow.Context) string {
					return fmt.Sprintf("✅ Dossier créé pour %s. Vous recevrez votre identifiant fiscal par message.", c.GetString("name"))
				}},
			},
		},
	}
}
