package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"FiscoBot/bot/chat"
	"FiscoBot/internal/config"
	"FiscoBot/internal/lib/sl"
)

// Assistant is the free-conversation collaborator. It keeps one OpenAI
// thread per user and parses the assistant reply as a structured
// {message, intents} payload, falling back to plain text.
type Assistant struct {
	client      *openai.Client
	assistantID string
	threads     *threadCache
	locker      *lockThreads
	log         *slog.Logger
}

// threadCache maps user keys to OpenAI thread ids. It carries its own
// lock: the per-user mutexes serialize turns for one user, but two
// first-time users on distinct sessions create threads concurrently and
// would otherwise write the shared map at the same time.
type threadCache struct {
	mu  sync.Mutex
	ids map[string]string
}

func newThreadCache() *threadCache {
	return &threadCache{ids: make(map[string]string)}
}

func (t *threadCache) get(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ids[key]
}

func (t *threadCache) put(key, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids[key] = id
}

type lockThreads struct {
	mutex   sync.Mutex
	threads map[string]*sync.Mutex
}

// NewAssistant creates the OpenAI assistant adapter.
func NewAssistant(conf *config.Config, logger *slog.Logger) *Assistant {
	if conf.OpenAI.ApiKey == "" {
		return nil
	}
	return &Assistant{
		client:      openai.NewClient(conf.OpenAI.ApiKey),
		assistantID: conf.OpenAI.AssistantID,
		threads:     newThreadCache(),
		locker:      &lockThreads{threads: make(map[string]*sync.Mutex)},
		log:         logger.With(sl.Module("assistant")),
	}
}

func (l *lockThreads) Lock(userId string) {
	l.mutex.Lock()

	mutex, exists := l.threads[userId]
	if !exists {
		mutex = &sync.Mutex{}
		l.threads[userId] = mutex
	}

	l.mutex.Unlock()

	mutex.Lock()
}

func (l *lockThreads) Unlock(userId string) {
	l.mutex.Lock()

	mutex, exists := l.threads[userId]
	if !exists {
		l.mutex.Unlock()
		return
	}
	l.mutex.Unlock()

	mutex.Unlock()
}

// GenerateResponse runs one free-conversation turn for the session's user.
func (a *Assistant) GenerateResponse(ctx context.Context, session *chat.Session, message string) (chat.AIReply, error) {
	userKey := session.Platform + ":" + session.UserID
	defer a.locker.Unlock(userKey)

	thread, err := a.getOrCreateThread(ctx, userKey)
	if err != nil {
		return chat.AIReply{}, err
	}

	_, err = a.client.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: message,
	})
	if err != nil {
		return chat.AIReply{}, fmt.Errorf("error creating message: %v", err)
	}

	completed := a.handleRun(ctx, thread.ID)
	if !completed {
		return chat.AIReply{}, fmt.Errorf("max retries reached, unable to complete run")
	}

	msgs, err := a.client.ListMessage(ctx, thread.ID, nil, nil, nil, nil, nil)
	if err != nil {
		return chat.AIReply{}, fmt.Errorf("error listing messages: %v", err)
	}
	if len(msgs.Messages) == 0 {
		return chat.AIReply{}, fmt.Errorf("no messages found")
	}

	responseText := msgs.Messages[0].Content[0].Text.Value

	var reply chat.AIReply
	if err := json.Unmarshal([]byte(responseText), &reply); err != nil {
		a.log.With(
			slog.String("user", userKey),
			slog.Int("text_length", len(responseText)),
		).Debug("non-structured assistant reply")
		return chat.AIReply{Message: responseText}, nil
	}

	if intent, ok := reply.TopIntent(); ok {
		a.log.With(
			slog.String("user", userKey),
			slog.String("workflow_id", intent.WorkflowID),
			slog.Float64("confidence", intent.Confidence),
		).Debug("intent detected")
	}

	return reply, nil
}

func (a *Assistant) handleRun(ctx context.Context, threadID string) bool {
	maxRetries := 3
	completed := false

	for attempt := 0; attempt < maxRetries; attempt++ {
		run, err := a.client.CreateRun(ctx, threadID, openai.RunRequest{
			AssistantID: a.assistantID,
		})
		if err != nil {
			a.log.Error(fmt.Sprintf("error creating run: %v", err))
			continue
		}

		nextPoll := false
		for {
			time.Sleep(1 * time.Second)
			run, err = a.client.RetrieveRun(ctx, threadID, run.ID)
			if err != nil {
				a.log.Error(fmt.Sprintf("error retrieving run: %v", err))
				break
			}

			switch run.Status {
			case openai.RunStatusCompleted:
				completed = true
				nextPoll = true
			case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusIncomplete:
				errorMsg := ""
				if run.LastError != nil {
					errorMsg = run.LastError.Message
				}
				a.log.With(
					slog.String("status", string(run.Status)),
					slog.Any("error", errorMsg),
				).Error("run failed")
				nextPoll = true
			default:
				// still running, continue polling
			}

			if nextPoll {
				break
			}
		}

		if completed {
			break
		}

		time.Sleep(2 * time.Second)
	}

	return completed
}

func (a *Assistant) getOrCreateThread(ctx context.Context, userKey string) (openai.Thread, error) {
	a.locker.Lock(userKey)

	if threadId := a.threads.get(userKey); threadId != "" {
		thread, err := a.client.RetrieveThread(ctx, threadId)
		if err == nil {
			return thread, nil
		}
		a.log.With(slog.String("thread", threadId)).Error("retrieving thread", sl.Err(err))
	}

	thread, err := a.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return openai.Thread{}, err
	}

	a.threads.put(userKey, thread.ID)
	a.log.With(slog.String("thread", thread.ID)).Info("created new thread")

	return thread, nil
}
