package chat

import "context"

// SessionStorage handles persistence of sessions, keyed {platform, user}.
type SessionStorage interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, platform, userID string) (*Session, error)
	Delete(ctx context.Context, platform, userID string) error
}

// Intent is one workflow the AI collaborator detected in free text.
type Intent struct {
	WorkflowID string  `json:"workflow_id"`
	Confidence float64 `json:"confidence"`
}

// AIReply is the opaque response of the free-conversation collaborator.
// The engine only inspects the top intent's confidence.
type AIReply struct {
	Message string   `json:"message"`
	Intents []Intent `json:"intents,omitempty"`
}

// AIProvider generates free-conversation responses and optional workflow
// intents for idle sessions.
type AIProvider interface {
	GenerateResponse(ctx context.Context, session *Session, message string) (AIReply, error)
}

// TopIntent returns the best detected intent, if any.
func (r AIReply) TopIntent() (Intent, bool) {
	if len(r.Intents) == 0 {
		return Intent{}, false
	}
	return r.Intents[0], true
}
