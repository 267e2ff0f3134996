package model

// Route is the retrieval scope decided by the query router.
type Route string

const (
	RouteExercises Route = "EXERCISES"
	RouteWorkouts  Route = "WORKOUTS"
	RouteBoth      Route = "BOTH"
	RouteNeither   Route = "NEITHER"
)

// GuardrailLabel is the pre-generation safety classification of a prompt.
type GuardrailLabel string

const (
	GuardFitnessOK     GuardrailLabel = "FITNESS_OK"
	GuardMedicalAdvice GuardrailLabel = "MEDICAL_ADVICE"
	GuardNonFitness    GuardrailLabel = "NON_FITNESS"
)

const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. The caller owns the history and
// passes it in full on each request; roles alternate starting with human.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type EventKind string

const (
	EventStatus   EventKind = "status"
	EventAnswer   EventKind = "answer"
	EventTerminal EventKind = "terminal"
)

// Event is one entry of a chat session's ordered progress log.
type Event struct {
	Kind EventKind `json:"kind"`
	Text string    `json:"text,omitempty"`
}
