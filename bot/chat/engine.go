package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"FiscoBot/bot/workflow"
	"FiscoBot/internal/lib/sl"
)

// Config carries the orchestrator's product knobs.
type Config struct {
	// IntentConfidence is the threshold above which a detected AI intent
	// asks for confirmation before starting a workflow.
	IntentConfidence float64
	// WorkflowTimeout discards a dangling activation on the next message,
	// unless the definition carries its own timeout.
	WorkflowTimeout time.Duration
	// SessionTTL controls the session expiry bookkeeping.
	SessionTTL time.Duration
	// NavDepth bounds the navigation stack.
	NavDepth int
	// ReplyDelay simulates human pacing before auto-advance messages.
	ReplyDelay time.Duration
	// DefaultLanguage seeds new sessions.
	DefaultLanguage string
	// Onboarding is the mandatory system workflow for unverified sessions.
	Onboarding workflow.WorkflowID
}

// Engine is the platform-agnostic top-level bot state machine. Per inbound
// message it routes between the command router, the workflow executor, the
// menu handler and the AI free-conversation handler.
type Engine struct {
	conf      Config
	workflows *workflow.Registry
	services  *workflow.ServiceRegistry
	storage   SessionStorage
	ai        AIProvider
	commands  *CommandRouter
	locker    *sessionLocker
	log       *slog.Logger
}

// NewEngine creates a new chat engine.
func NewEngine(conf Config, workflows *workflow.Registry, services *workflow.ServiceRegistry, storage SessionStorage, ai AIProvider, log *slog.Logger) *Engine {
	return &Engine{
		conf:      conf,
		workflows: workflows,
		services:  services,
		storage:   storage,
		ai:        ai,
		commands:  NewCommandRouter(DefaultCommands()),
		locker:    newSessionLocker(),
		log:       log.With(sl.Module("chat.engine")),
	}
}

const maxTransitions = 20

// Session data key holding the workflow awaiting AI confirmation.
const keyPendingWorkflow = "pending_workflow"

// HandleMessage processes one text message from any platform. Messages for
// the same session are serialized; distinct sessions run in parallel. This
// is the single catch boundary: every message yields exactly one outward
// response or a logged failure, and a failed handler leaves the persisted
// session untouched.
func (e *Engine) HandleMessage(ctx context.Context, m Messenger, platform, userID, chatID, text string) error {
	key := platform + ":" + userID
	e.locker.Lock(key)
	defer e.locker.Unlock(key)

	session, err := e.storage.Load(ctx, platform, userID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		session = NewSession(platform, userID, chatID, e.conf.DefaultLanguage, e.conf.NavDepth)
	}
	session.ChatID = chatID
	session.Touch(e.conf.SessionTTL)

	defer func() {
		if r := recover(); r != nil {
			e.log.With(
				slog.String("platform", platform),
				slog.String("user_id", userID),
				slog.Any("panic", r),
			).Error("panic while handling message")
			_ = m.SendText(chatID, msgApology)
		}
	}()

	if err := e.dispatch(ctx, m, session, text); err != nil {
		e.log.With(
			slog.String("platform", platform),
			slog.String("user_id", userID),
			slog.String("state", string(session.State)),
			sl.Err(err),
		).Error("handling message")
		_ = m.SendText(chatID, msgApology)
	}
	return nil
}

// dispatch applies the fixed routing priority: onboarding for unverified
// sessions, command router first refusal, active workflow, menu selection,
// AI free conversation, generic fallback.
func (e *Engine) dispatch(ctx context.Context, m Messenger, session *Session, text string) error {
	// 1. Unverified sessions go through mandatory onboarding; neither
	// commands nor the AI may intercept until it completes.
	if !session.Verified {
		if session.Workflow == nil {
			return e.startWorkflow(ctx, m, session, e.conf.Onboarding)
		}
		return e.continueWorkflow(ctx, m, session, text)
	}

	// 2. Command router first refusal.
	if cmd, known := e.commands.Detect(text); known {
		active := e.activeDefinition(session)
		if e.commands.Allowed(cmd, session.State, active) {
			return e.executeCommand(ctx, m, session, cmd)
		}
		if session.State.InWorkflow() {
			return e.reply(ctx, m, session, msgCommandBlocked)
		}
	}

	// 3. Active workflow consumes the input, unless it went stale.
	if session.State.InWorkflow() && session.Workflow != nil {
		if e.stale(session) {
			e.log.With(
				slog.String("workflow_id", string(session.ActiveWorkflowID())),
				slog.String("user_id", session.UserID),
			).Info("discarding stale workflow")
			session.ClearWorkflow()
			session.State = StateIdle
		} else {
			return e.continueWorkflow(ctx, m, session, text)
		}
	}

	// 4. Menu selection.
	if session.State == StateMenuDisplayed {
		return e.handleMenuSelection(ctx, m, session, text)
	}

	// 5. AI free conversation.
	if session.State == StateAIWaitingConfirm {
		return e.handleConfirm(ctx, m, session, text)
	}
	if session.State == StateIdle {
		return e.handleFreeText(ctx, m, session, text)
	}

	// 6. Fallback, no state change.
	return e.reply(ctx, m, session, msgDidNotUnderstand)
}

func (e *Engine) activeDefinition(session *Session) *workflow.Definition {
	if session.Workflow == nil {
		return nil
	}
	def, _ := e.workflows.Get(session.Workflow.WorkflowID)
	return def
}

func (e *Engine) stale(session *Session) bool {
	timeout := e.conf.WorkflowTimeout
	if def := e.activeDefinition(session); def != nil && def.Timeout > 0 {
		timeout = def.Timeout
	}
	return session.Workflow.Expired(timeout, time.Now())
}

// StartWorkflow begins a workflow for a user from outside the message flow
// (deep links, admin triggers).
func (e *Engine) StartWorkflow(ctx context.Context, m Messenger, platform, userID, chatID string, id workflow.WorkflowID) error {
	key := platform + ":" + userID
	e.locker.Lock(key)
	defer e.locker.Unlock(key)

	session, err := e.storage.Load(ctx, platform, userID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		session = NewSession(platform, userID, chatID, e.conf.DefaultLanguage, e.conf.NavDepth)
	}
	session.ChatID = chatID
	return e.startWorkflow(ctx, m, session, id)
}

func (e *Engine) startWorkflow(ctx context.Context, m Messenger, session *Session, id workflow.WorkflowID) error {
	def, ok := e.workflows.Get(id)
	if !ok {
		return fmt.Errorf("workflow not found: %s", id)
	}

	exec := workflow.NewExecutor(def, e.services, e.log)
	// The durable profile (onboarded phone, name) is visible to every
	// activation; workflows must not re-ask what the session already knows.
	exec.Context().SeedData(session.Data)
	session.Workflow = exec.Context()
	if def.System {
		session.State = StateSystemWorkflow
	} else {
		session.State = StateUserWorkflow
	}

	e.log.With(
		slog.String("platform", session.Platform),
		slog.String("user_id", session.UserID),
		slog.String("workflow_id", string(id)),
	).Info("starting workflow")

	return e.processResult(ctx, m, session, exec, exec.Start())
}

func (e *Engine) continueWorkflow(ctx context.Context, m Messenger, session *Session, text string) error {
	def := e.activeDefinition(session)
	if def == nil {
		session.ClearWorkflow()
		session.State = StateIdle
		return e.reply(ctx, m, session, msgApology)
	}

	exec := workflow.Resume(def, session.Workflow, e.services, e.log)
	before := exec.Context().ToSnapshot()
	result := exec.ProcessInput(text)

	if exec.Context().Current != before.Current {
		e.pushFrame(session, def, before)
	}
	return e.processResult(ctx, m, session, exec, result)
}

// pushFrame records the pre-move state so "retour" can restore it.
func (e *Engine) pushFrame(session *Session, def *workflow.Definition, snap workflow.Snapshot) {
	session.Nav.Push(workflow.NavigationFrame{
		WorkflowID: snap.WorkflowID,
		StepID:     snap.Current,
		Snapshot:   snap,
		PushedAt:   time.Now(),
		CanReturn:  !replaysService(def, snap.Current),
	})
}

// replaysService reports whether re-entering the step would re-dispatch a
// collaborator call: the step itself is a service step, or it is a message
// step whose auto-advance chain can reach one before resting at a prompt.
func replaysService(def *workflow.Definition, id workflow.StepID) bool {
	seen := make(map[workflow.StepID]bool)
	var walk func(workflow.StepID) bool
	walk = func(id workflow.StepID) bool {
		if seen[id] {
			return false
		}
		seen[id] = true

		step, ok := def.GetStep(id)
		if !ok {
			return false
		}
		switch step.Type {
		case workflow.StepService:
			return true
		case workflow.StepMessage:
			if step.Next.To != "" {
				return walk(step.Next.To)
			}
			// Which case fires depends on the restored data; any reachable
			// service makes the frame unsafe.
			for _, c := range step.Next.Cases {
				if walk(c.To) {
					return true
				}
			}
		}
		return false
	}
	return walk(id)
}

// processResult drives the step-result loop: sends, auto-transitions,
// synchronous service dispatch, completion. State is persisted before
// each outward message.
func (e *Engine) processResult(ctx context.Context, m Messenger, session *Session, exec *workflow.Executor, result workflow.StepResult) error {
	def := exec.Definition()

	for i := 0; i < maxTransitions; i++ {
		if result.Err != nil {
			return result.Err
		}

		switch result.Kind {
		case workflow.KindValidationError:
			// User input rejected: re-prompt, no workflow state change.
			return e.replyOptions(ctx, m, session, result.Message, result.Choices)

		case workflow.KindSendMessage:
			if err := e.replyOptions(ctx, m, session, result.Message, result.Choices); err != nil {
				return err
			}
			if result.AutoAdvance && result.Next != "" {
				if e.conf.ReplyDelay > 0 {
					time.Sleep(e.conf.ReplyDelay)
				}
				e.pushFrame(session, def, exec.Context().ToSnapshot())
				result = exec.AdvanceTo(result.Next)
				continue
			}
			return nil

		case workflow.KindCallService:
			if result.Invocation.Progress != "" {
				if err := e.reply(ctx, m, session, result.Invocation.Progress); err != nil {
					return err
				}
			}
			result = exec.RunService(ctx, result.Invocation)
			continue

		case workflow.KindServiceError:
			// The step stays current and the persisted session must remain
			// exactly as before the call: send without saving.
			_ = m.SendText(session.ChatID, result.Message)
			return nil

		case workflow.KindComplete:
			return e.completeWorkflow(ctx, m, session, def, result)

		default:
			return fmt.Errorf("unexpected step result kind: %s", result.Kind)
		}
	}

	return fmt.Errorf("workflow %s exceeded %d transitions", def.ID, maxTransitions)
}

func (e *Engine) completeWorkflow(ctx context.Context, m Messenger, session *Session, def *workflow.Definition, result workflow.StepResult) error {
	e.log.With(
		slog.String("platform", session.Platform),
		slog.String("user_id", session.UserID),
		slog.String("workflow_id", string(def.ID)),
	).Info("workflow completed")

	session.MergeData(result.Data)
	session.ClearWorkflow()
	if def.System {
		session.Verified = true
	}
	session.State = StateIdle

	text := result.Message
	if text == "" {
		text = msgWorkflowDone
	}
	return e.reply(ctx, m, session, text)
}

func (e *Engine) executeCommand(ctx context.Context, m Messenger, session *Session, cmd *Command) error {
	switch cmd.Type {
	case CmdMenu:
		session.ClearWorkflow()
		return e.showMenu(ctx, m, session)

	case CmdCancel:
		session.ClearWorkflow()
		session.State = StateIdle
		return e.reply(ctx, m, session, msgCancelled)

	case CmdBack:
		return e.goBack(ctx, m, session)

	case CmdLanguage:
		session.Language = cmd.Arg
		return e.reply(ctx, m, session, msgLanguageSet)

	case CmdHelp:
		return e.reply(ctx, m, session, msgHelp)
	}
	return e.reply(ctx, m, session, msgDidNotUnderstand)
}

func (e *Engine) showMenu(ctx context.Context, m Messenger, session *Session) error {
	visible := e.workflows.Visible()
	options := make([]Option, 0, len(visible))
	for _, def := range visible {
		options = append(options, Option{Label: def.Title, Value: string(def.ID)})
	}
	session.State = StateMenuDisplayed
	return e.replyOptionsRaw(ctx, m, session, msgMenuTitle, options)
}

func (e *Engine) handleMenuSelection(ctx context.Context, m Messenger, session *Session, text string) error {
	visible := e.workflows.Visible()
	idx, exit, ok := ParseMenuSelection(text, len(visible))
	if !ok || exit {
		session.State = StateIdle
		return e.reply(ctx, m, session, msgMenuClosed)
	}
	return e.startWorkflow(ctx, m, session, visible[idx].ID)
}

// goBack restores the most recent returnable navigation frame verbatim.
func (e *Engine) goBack(ctx context.Context, m Messenger, session *Session) error {
	frame, ok := session.Nav.PopReturnable()
	if !ok || session.Workflow == nil {
		return e.reply(ctx, m, session, msgNothingToGoBack)
	}

	def, found := e.workflows.Get(frame.WorkflowID)
	if !found {
		return e.reply(ctx, m, session, msgNothingToGoBack)
	}

	session.Workflow.Restore(frame.Snapshot)
	exec := workflow.Resume(def, session.Workflow, e.services, e.log)
	return e.processResult(ctx, m, session, exec, exec.ReEnter())
}

func (e *Engine) handleFreeText(ctx context.Context, m Messenger, session *Session, text string) error {
	if e.ai == nil {
		return e.reply(ctx, m, session, msgDidNotUnderstand)
	}
	reply, err := e.ai.GenerateResponse(ctx, session, text)
	if err != nil {
		return fmt.Errorf("ai response: %w", err)
	}

	if intent, ok := reply.TopIntent(); ok && intent.Confidence >= e.conf.IntentConfidence {
		if _, exists := e.workflows.Get(workflow.WorkflowID(intent.WorkflowID)); exists {
			session.State = StateAIWaitingConfirm
			session.Set(keyPendingWorkflow, intent.WorkflowID)

			text := reply.Message
			if text != "" {
				text += "\n\n"
			}
			return e.reply(ctx, m, session, text+msgConfirmWorkflow)
		}
	}

	if reply.Message == "" {
		return e.reply(ctx, m, session, msgDidNotUnderstand)
	}
	return e.reply(ctx, m, session, reply.Message)
}

var confirmYes = []string{"oui", "yes", "ok", "d'accord", "daccord", "allons-y"}
var confirmNo = []string{"non", "no", "pas maintenant"}

func (e *Engine) handleConfirm(ctx context.Context, m Messenger, session *Session, text string) error {
	normalized := NormalizeInput(text)
	pending := session.GetString(keyPendingWorkflow)
	session.Delete(keyPendingWorkflow)

	if contains(confirmYes, normalized) && pending != "" {
		return e.startWorkflow(ctx, m, session, workflow.WorkflowID(pending))
	}
	if contains(confirmNo, normalized) {
		session.State = StateIdle
		return e.reply(ctx, m, session, msgConfirmDeclined)
	}

	// Ambiguous reply: back to a fresh free-conversation turn.
	session.State = StateIdle
	return e.handleFreeText(ctx, m, session, text)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// reply persists the session, then sends. A crash between the two leaves
// the new state recoverable on the next inbound message.
func (e *Engine) reply(ctx context.Context, m Messenger, session *Session, text string) error {
	if err := e.storage.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return m.SendText(session.ChatID, text)
}

func (e *Engine) replyOptions(ctx context.Context, m Messenger, session *Session, text string, choices []workflow.Choice) error {
	if len(choices) == 0 {
		return e.reply(ctx, m, session, text)
	}
	options := make([]Option, 0, len(choices))
	for _, c := range choices {
		options = append(options, Option{Label: c.Label, Value: c.Value})
	}
	return e.replyOptionsRaw(ctx, m, session, text, options)
}

func (e *Engine) replyOptionsRaw(ctx context.Context, m Messenger, session *Session, text string, options []Option) error {
	if err := e.storage.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return m.SendOptions(session.ChatID, text, options)
}
