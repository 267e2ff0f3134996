package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/ai"
	"github.com/liftlog/coach/internal/model"
	"github.com/liftlog/coach/internal/session"
)

const answerSystemMessage = `You are a helpful fitness assistant.
- Be concise and practical
- Prefer bullet points
- Limit answers to ~150 words unless explicitly asked to elaborate`

const internalErrorAnswer = "Sorry, something went wrong while answering your question. Please try again."

type GuardrailClassifier interface {
	Classify(ctx context.Context, prompt string, history []model.Message) (model.GuardrailLabel, error)
}

type QueryRouter interface {
	Route(ctx context.Context, prompt string, history []model.Message) (model.Route, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, userID int64, prompt string, route model.Route) (string, error)
}

// ChatService runs one chat turn as a small state machine:
// guardrail -> (blocked | route) -> retrieve -> answer, appending exactly one
// event per transition to the session log and always closing it with a
// terminal event.
type ChatService struct {
	guardrail GuardrailClassifier
	router    QueryRouter
	retriever Retriever
	chatter   ai.Chatter
}

func NewChatService(guardrail GuardrailClassifier, router QueryRouter, retriever Retriever, chatter ai.Chatter) *ChatService {
	return &ChatService{
		guardrail: guardrail,
		router:    router,
		retriever: retriever,
		chatter:   chatter,
	}
}

// Run drives the whole turn. It never returns an error: every failure ends as
// a user-safe answer event, and the terminal event is appended no matter what.
func (s *ChatService) Run(ctx context.Context, userID int64, prompt string, history []model.Message, sess *session.Session) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("user_id", userID))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("chat turn panicked", zap.Any("panic", r))
			sess.Append(model.Event{Kind: model.EventAnswer, Text: internalErrorAnswer})
		}
		sess.Append(model.Event{Kind: model.EventTerminal})
	}()

	if err := s.runTurn(ctx, userID, prompt, history, sess); err != nil {
		logger.Error("chat turn failed", zap.Error(err))
		sess.Append(model.Event{Kind: model.EventAnswer, Text: internalErrorAnswer})
	}
}

func (s *ChatService) runTurn(ctx context.Context, userID int64, prompt string, history []model.Message, sess *session.Session) error {
	logger := logutil.GetLogger(ctx).With(zap.Int64("user_id", userID))
	sess.Append(model.Event{Kind: model.EventStatus, Text: "Checking your question..."})

	label, err := s.guardrail.Classify(ctx, prompt, history)
	if err != nil {
		return err
	}
	switch label {
	case model.GuardMedicalAdvice:
		logger.Info("chat blocked", zap.String("label", string(label)))
		sess.Append(model.Event{Kind: model.EventAnswer, Text: MedicalRefusal})
		return nil
	case model.GuardNonFitness:
		logger.Info("chat blocked", zap.String("label", string(label)))
		sess.Append(model.Event{Kind: model.EventAnswer, Text: NonFitnessRefusal})
		return nil
	}

	sess.Append(model.Event{Kind: model.EventStatus, Text: "Deciding where to look..."})
	route, err := s.router.Route(ctx, prompt, history)
	if err != nil {
		return err
	}
	logger.Info("chat routed", zap.String("route", string(route)))

	sess.Append(model.Event{Kind: model.EventStatus, Text: "Searching your training data..."})
	retrieved, err := s.retriever.Retrieve(ctx, userID, prompt, route)
	if err != nil {
		return err
	}

	sess.Append(model.Event{Kind: model.EventStatus, Text: "Writing your answer..."})
	messages := make([]model.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, model.Message{
		Role: model.RoleHuman,
		Text: BuildAnswerPrompt(prompt, retrieved),
	})
	answer, err := s.chatter.Chat(ctx, answerSystemMessage, messages)
	if err != nil {
		return err
	}
	sess.Append(model.Event{Kind: model.EventAnswer, Text: answer})
	return nil
}
