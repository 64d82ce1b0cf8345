package onboarding

import (
	"fmt"

	"FiscoBot/bot/workflow"
)

func confirmPrompt(c *workflow.Context) string {
	return fmt.Sprintf(
		"📋 Vérifiez vos informations :\n\n👤 Nom : %s\n📱 Téléphone : %s\n\nTout est correct ?",
		c.GetString(KeyName), c.GetString(KeyPhone),
	)
}

// donePrompt greets a recognized taxpayer by their registered name, or the
// freshly entered one otherwise.
func donePrompt(c *workflow.Context) string {
	name := c.GetString(KeyName)
	if v, ok := c.Lookup("check.name"); ok {
		if s, isStr := v.(string); isStr && s != "" {
			name = s
		}
	}
	if name == "" {
		return "✅ Vérification terminée ! Tapez \"menu\" pour découvrir mes services."
	}
	return fmt.Sprintf("%s, votre compte est vérifié ! ✅\nTapez \"menu\" pour découvrir mes services.", name)
}
