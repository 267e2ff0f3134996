package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/ai"
	"github.com/liftlog/coach/internal/model"
)

const routerPromptTemplate = `You are a routing classifier for a fitness tracking app.

Each option refers to a DIFFERENT type of stored data:

EXERCISES:
- Individual exercises
- Single movements (e.g. bicep curls, squats)
- Usually tied to a specific date
- Questions about muscles, form, or specific exercises

WORKOUTS:
- A full gym session (one trip to the gym)
- Contains multiple exercises done together
- Questions about workout plans, progress over time, or full sessions

BOTH:
- Questions that need individual exercises AND full workouts

NEITHER:
- General fitness advice or concepts
- Not answered using stored exercise or workout data

Respond with EXACTLY ONE word:
EXERCISES, WORKOUTS, BOTH, or NEITHER.

Conversation previous queries:
%s

Query:
User: %s
`

// RouterService decides which record category a question should be answered
// from. Anything the classifier returns outside the four labels collapses to
// NEITHER: a routing guess must not invent a retrieval scope.
type RouterService struct {
	classifier ai.Classifier
}

func NewRouterService(classifier ai.Classifier) *RouterService {
	return &RouterService{classifier: classifier}
}

func (s *RouterService) Route(ctx context.Context, prompt string, history []model.Message) (model.Route, error) {
	full := fmt.Sprintf(routerPromptTemplate, priorHumanTurns(history), prompt)
	raw, err := s.classifier.Classify(ctx, full)
	if err != nil {
		return model.RouteNeither, err
	}
	route := model.Route(strings.ToUpper(strings.TrimSpace(raw)))
	switch route {
	case model.RouteExercises, model.RouteWorkouts, model.RouteBoth, model.RouteNeither:
		return route, nil
	}
	logutil.GetLogger(ctx).Warn("router output out of vocabulary", zap.String("raw", raw))
	return model.RouteNeither, nil
}

// priorHumanTurns folds earlier user utterances into the classification
// prompt, most recent last, so follow-ups like "how about last week?" resolve.
func priorHumanTurns(history []model.Message) string {
	var sb strings.Builder
	for _, msg := range history {
		if msg.Role == model.RoleHuman {
			sb.WriteString("User: ")
			sb.WriteString(msg.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
