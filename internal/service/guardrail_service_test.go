package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liftlog/coach/internal/model"
)

func TestGuardrailKnownLabels(t *testing.T) {
	tests := []struct {
		raw  string
		want model.GuardrailLabel
	}{
		{"FITNESS_OK", model.GuardFitnessOK},
		{"MEDICAL_ADVICE", model.GuardMedicalAdvice},
		{"NON_FITNESS", model.GuardNonFitness},
		{" medical_advice\n", model.GuardMedicalAdvice},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			svc := NewGuardrailService(&stubClassifier{out: tt.raw})
			label, err := svc.Classify(context.Background(), "my knee hurts", nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, label)
		})
	}
}

func TestGuardrailOutOfVocabularyFailsOpen(t *testing.T) {
	svc := NewGuardrailService(&stubClassifier{out: "I think this is fine"})
	label, err := svc.Classify(context.Background(), "best squat accessories?", nil)
	require.NoError(t, err)
	require.Equal(t, model.GuardFitnessOK, label)
}

func TestGuardrailErrorFailsOpen(t *testing.T) {
	svc := NewGuardrailService(&stubClassifier{err: errors.New("timeout")})
	label, err := svc.Classify(context.Background(), "best squat accessories?", nil)
	require.Error(t, err)
	require.Equal(t, model.GuardFitnessOK, label)
}
