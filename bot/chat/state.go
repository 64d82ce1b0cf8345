package chat

import (
	"time"

	"github.com/google/uuid"

	"FiscoBot/bot/workflow"
)

// BotState is the top-level conversational state of a session.
type BotState string

const (
	StateUnverified       BotState = "unverified"
	StateIdle             BotState = "idle"
	StateAIWaitingConfirm BotState = "ai_waiting_confirm"
	StateMenuDisplayed    BotState = "menu_displayed"
	StateUserWorkflow     BotState = "user_workflow"
	StateSystemWorkflow   BotState = "system_workflow"
)

// InWorkflow reports whether a workflow is driving the conversation.
func (s BotState) InWorkflow() bool {
	return s == StateUserWorkflow || s == StateSystemWorkflow
}

// Session is the persistent per-conversation state for one
// (platform, user) pair. At most one workflow is active at a time; the
// single Workflow pointer enforces the invariant structurally.
type Session struct {
	ID           string   `json:"id" bson:"id"`
	Platform     string   `json:"platform" bson:"platform"`
	UserID       string   `json:"user_id" bson:"user_id"`
	ChatID       string   `json:"chat_id" bson:"chat_id"`
	State        BotState `json:"state" bson:"state"`
	Language     string   `json:"language" bson:"language"`
	Verified     bool     `json:"verified" bson:"verified"`
	IsActive     bool     `json:"is_active" bson:"is_active"`
	MessageCount int      `json:"message_count" bson:"message_count"`

	// Workflow is the active activation context, nil when none.
	Workflow *workflow.Context `json:"workflow,omitempty" bson:"workflow,omitempty"`

	// Data survives across workflow activations.
	Data map[string]any `json:"data" bson:"data"`

	Nav workflow.NavigationStack `json:"nav" bson:"nav"`

	LastActivityAt time.Time `json:"last_activity_at" bson:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at" bson:"expires_at"`
}

// NewSession creates a fresh unverified session.
func NewSession(platform, userID, chatID, language string, navDepth int) *Session {
	return &Session{
		ID:             uuid.NewString(),
		Platform:       platform,
		UserID:         userID,
		ChatID:         chatID,
		State:          StateUnverified,
		Language:       language,
		IsActive:       true,
		Data:           make(map[string]any),
		Nav:            workflow.NewNavigationStack(navDepth),
		LastActivityAt: time.Now(),
	}
}

// ActiveWorkflowID returns the id of the active workflow, empty if none.
func (s *Session) ActiveWorkflowID() workflow.WorkflowID {
	if s.Workflow == nil {
		return ""
	}
	return s.Workflow.WorkflowID
}

// CurrentStepID returns the current step of the active workflow.
func (s *Session) CurrentStepID() workflow.StepID {
	if s.Workflow == nil {
		return ""
	}
	return s.Workflow.Current
}

// ClearWorkflow drops the active activation and its navigation frames.
func (s *Session) ClearWorkflow() {
	s.Workflow = nil
	s.Nav.Clear()
}

// GetString retrieves a string value from the session data bag.
func (s *Session) GetString(key string) string {
	if v, ok := s.Data[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// Set stores a value in the session data bag.
func (s *Session) Set(key string, value any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

// Delete removes a key from the session data bag.
func (s *Session) Delete(key string) {
	delete(s.Data, key)
}

// MergeData merges workflow results into the persistent data bag.
func (s *Session) MergeData(data map[string]any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	for k, v := range data {
		s.Data[k] = v
	}
}

// Expired reports whether the session passed its inactivity deadline.
// A zero ExpiresAt means no deadline was ever set.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Touch updates the activity bookkeeping for one processed message.
func (s *Session) Touch(ttl time.Duration) {
	s.MessageCount++
	s.LastActivityAt = time.Now()
	if ttl > 0 {
		s.ExpiresAt = s.LastActivityAt.Add(ttl)
	}
}
