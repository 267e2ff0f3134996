package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liftlog/coach/internal/model"
)

func TestRouteKnownLabels(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Route
	}{
		{"EXERCISES", model.RouteExercises},
		{"WORKOUTS", model.RouteWorkouts},
		{"BOTH", model.RouteBoth},
		{"NEITHER", model.RouteNeither},
		{"  exercises \n", model.RouteExercises},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			svc := NewRouterService(&stubClassifier{out: tt.raw})
			route, err := svc.Route(context.Background(), "what did I squat?", nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, route)
		})
	}
}

func TestRouteOutOfVocabulary(t *testing.T) {
	svc := NewRouterService(&stubClassifier{out: "EXERCISES AND MORE"})
	route, err := svc.Route(context.Background(), "what did I squat?", nil)
	require.NoError(t, err)
	require.Equal(t, model.RouteNeither, route)
}

func TestRouteClassifierError(t *testing.T) {
	svc := NewRouterService(&stubClassifier{err: errors.New("upstream down")})
	route, err := svc.Route(context.Background(), "what did I squat?", nil)
	require.Error(t, err)
	require.Equal(t, model.RouteNeither, route)
}

func TestRoutePromptCarriesHistory(t *testing.T) {
	classifier := &stubClassifier{out: "WORKOUTS"}
	svc := NewRouterService(classifier)
	history := []model.Message{
		{Role: model.RoleHuman, Text: "show my last push day"},
		{Role: model.RoleAssistant, Text: "here it is"},
		{Role: model.RoleHuman, Text: "and the one before?"},
	}
	_, err := svc.Route(context.Background(), "how about last month?", history)
	require.NoError(t, err)
	require.Len(t, classifier.prompts, 1)
	require.Contains(t, classifier.prompts[0], "User: show my last push day\n")
	require.Contains(t, classifier.prompts[0], "User: and the one before?\n")
	require.NotContains(t, classifier.prompts[0], "here it is")
	require.Contains(t, classifier.prompts[0], "User: how about last month?")
}
