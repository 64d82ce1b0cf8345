package chat

// User-facing texts of the orchestrator itself. Workflow prompts live in
// the workflow definitions.
const (
	msgApology = "Désolé, une erreur est survenue. Veuillez réessayer dans quelques instants. 🙏"

	msgDidNotUnderstand = "Je n'ai pas compris votre message. Tapez \"menu\" pour voir les services disponibles."

	msgCommandBlocked = "Cette commande n'est pas disponible à cette étape."

	msgMenuTitle = "Voici les services disponibles (tapez 0 pour revenir) :"

	msgMenuClosed = "D'accord, je reste à votre écoute. Tapez \"menu\" à tout moment."

	msgCancelled = "Opération annulée. Tapez \"menu\" pour voir les services disponibles."

	msgNothingToGoBack = "Il n'y a pas d'étape précédente."

	msgLanguageSet = "Langue mise à jour. ✅"

	msgHelp = "Je peux vous guider pas à pas : tapez \"menu\" pour choisir un service, \"retour\" pour revenir en arrière, \"annuler\" pour abandonner l'opération en cours."

	msgConfirmWorkflow = "Souhaitez-vous démarrer ce service maintenant ? (oui/non)"

	msgConfirmDeclined = "Très bien. Dites-moi comment je peux vous aider autrement."

	msgWorkflowDone = "C'est terminé. Tapez \"menu\" si vous avez besoin d'autre chose. ✅"
)
