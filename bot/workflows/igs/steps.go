package igs

import (
	"fmt"
	"strconv"

	"FiscoBot/bot/workflow"
)

// revenuePrompt adapts the wording to the declared sector.
func revenuePrompt(c *workflow.Context) string {
	if c.GetString(KeySector) == "informal" {
		return "Quel est votre chiffre d'affaires annuel estimé, en XAF ? (ex. 500000)"
	}
	return "Quel est le chiffre d'affaires annuel de votre entreprise, en XAF ? (ex. 12000000)"
}

func resultPrompt(c *workflow.Context) string {
	amount, _ := c.Lookup("compute.amount")
	band, _ := c.Lookup("compute.band")

	amountText := "—"
	if f, ok := amount.(float64); ok {
		amountText = formatAmount(f)
	}

	text := fmt.Sprintf("💰 Votre IGS annuel estimé : %s XAF", amountText)
	if b, ok := band.(string); ok && b != "" && b != "formal" {
		text += fmt.Sprintf(" (catégorie %s)", b)
	}
	return text + "\n\nCe montant est une estimation indicative basée sur vos déclarations."
}

// formatAmount renders 1234567 as "1 234 567".
func formatAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', 0, 64)
	out := ""
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += " "
		}
		out += string(ch)
	}
	return out
}
