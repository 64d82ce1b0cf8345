package workflow

// ResultKind tags the variant of a StepResult. Exactly one variant is
// produced per processed step.
type ResultKind string

const (
	// KindSendMessage renders a prompt (optionally with choices) to the user.
	KindSendMessage ResultKind = "send_message"
	// KindCallService asks the caller to invoke a business service.
	KindCallService ResultKind = "call_service"
	// KindComplete ends the workflow with a final message and data snapshot.
	KindComplete ResultKind = "complete"
	// KindValidationError re-displays an error; the offending step stays current.
	KindValidationError ResultKind = "validation_error"
	// KindServiceError surfaces a failed collaborator call; the service
	// step stays current unless a declared error step took over.
	KindServiceError ResultKind = "service_error"
)

// Invocation is a resolved business-service call.
type Invocation struct {
	Service  string
	Method   string
	Params   map[string]any
	Progress string
}

// StepResult is the outward-facing outcome of processing one step.
type StepResult struct {
	Kind ResultKind

	// SendMessage fields.
	Message     string
	Choices     []Choice
	Next        StepID
	AutoAdvance bool

	// CallService fields.
	Invocation *Invocation

	// Complete fields.
	Data map[string]any

	// Error carries an unexpected failure alongside the variant.
	Err error
}

// SendMessage builds a plain prompt result.
func SendMessage(text string) StepResult {
	return StepResult{Kind: KindSendMessage, Message: text}
}

// Complete builds a completion result with the final data snapshot.
func Complete(text string, data map[string]any) StepResult {
	return StepResult{Kind: KindComplete, Message: text, Data: data}
}

// ValidationError builds a re-prompt result.
func ValidationError(text string) StepResult {
	return StepResult{Kind: KindValidationError, Message: text}
}
