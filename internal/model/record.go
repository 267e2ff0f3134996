package model

// Metric is a single measurement inside an entry, e.g. "weight 80 kg" or
// "tempo slow". Exactly one of ValueNumber / ValueText is expected to be set.
type Metric struct {
	Key         string   `json:"key"`
	ValueNumber *float64 `json:"value_number"`
	ValueText   *string  `json:"value_text"`
	Unit        *string  `json:"unit"`
}

// EntryRecord is one set/round within an exercise. EntryIndex is the temporal
// order within the session and must be preserved.
type EntryRecord struct {
	EntryIndex int      `json:"entry_index"`
	Metrics    []Metric `json:"metrics"`
}

type ExerciseRecord struct {
	ID           int64         `json:"id"`
	ExerciseName string        `json:"exercise_name"`
	Note         *string       `json:"note"`
	WorkoutDate  string        `json:"workout_date"`
	Entries      []EntryRecord `json:"entries"`
}

type WorkoutRecord struct {
	ID          int64            `json:"id"`
	WorkoutDate string           `json:"workout_date"`
	WorkoutKind string           `json:"workout_kind"`
	Exercises   []ExerciseRecord `json:"exercises"`
}

// EmbeddingUnit pairs a record with its canonical text and vector, ready to be
// written back to the owning table.
type EmbeddingUnit struct {
	RecordID int64
	Text     string
	Vector   []float32
}

// SearchHit is one retrieval result. Similarity is 1 - cosine distance.
type SearchHit struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}
