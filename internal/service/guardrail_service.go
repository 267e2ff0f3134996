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

// Refusal texts are fixed, never model-generated.
const MedicalRefusal = `AI_message: I can't provide medical advice or diagnose injuries or conditions.

**For pain, injuries, or medical concerns**, please consult a qualified healthcare professional.

I can help with:
- General fitness training
- Exercise selection
- Workout structure

Feel free to ask if you'd like assistance with any of these!`

const NonFitnessRefusal = `AI_message: I'm designed to help with fitness and training-related questions.

Try asking about:
- Workouts
- Exercises
- Progress
- Recovery`

const guardrailPromptTemplate = `You are a guardrail classifier for a fitness-focused AI application.

Your task is to classify the user's message into exactly ONE of the following labels:

- FITNESS_OK
The request is related to fitness, exercise, training, workouts, recovery, or general nutrition and can be safely answered.

- MEDICAL_ADVICE
The request asks for medical advice, diagnosis, treatment, injury evaluation, medication guidance, or health decisions that should be handled by a medical professional.

- NON_FITNESS
The request is not related to fitness, exercise, or training (e.g., programming, general knowledge, writing tasks).

Rules:
- Do NOT answer the user.
- Do NOT explain your reasoning.
- Do NOT add extra text.
- Output ONLY the label.

If the request is ambiguous, choose the safest applicable label.

Conversation previous prompts:
%s

Current User Prompt to judge:
%s
`

// GuardrailService gates generation. Unknown classifier output collapses to
// FITNESS_OK, the opposite default from the router: a guardrail
// mis-classification must not block a legitimate fitness question.
type GuardrailService struct {
	classifier ai.Classifier
}

func NewGuardrailService(classifier ai.Classifier) *GuardrailService {
	return &GuardrailService{classifier: classifier}
}

func (s *GuardrailService) Classify(ctx context.Context, prompt string, history []model.Message) (model.GuardrailLabel, error) {
	full := fmt.Sprintf(guardrailPromptTemplate, priorHumanTurns(history), prompt)
	raw, err := s.classifier.Classify(ctx, full)
	if err != nil {
		return model.GuardFitnessOK, err
	}
	label := model.GuardrailLabel(strings.ToUpper(strings.TrimSpace(raw)))
	switch label {
	case model.GuardFitnessOK, model.GuardMedicalAdvice, model.GuardNonFitness:
		return label, nil
	}
	logutil.GetLogger(ctx).Warn("guardrail output out of vocabulary", zap.String("raw", raw))
	return model.GuardFitnessOK, nil
}
