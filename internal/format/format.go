// Package format renders fetched records into their canonical text. The same
// record must always produce the same text: the output is embedded, stored and
// later compared by similarity, so any drift would fragment the vector space.
package format

import (
	"sort"
	"strconv"
	"strings"

	"github.com/liftlog/coach/internal/model"
)

// ExerciseText renders one exercise with its entries in entry_index order.
func ExerciseText(rec model.ExerciseRecord) string {
	var lines []string
	lines = append(lines, "On "+rec.WorkoutDate+" performed "+rec.ExerciseName)
	if rec.Note != nil {
		lines = append(lines, "Note: "+*rec.Note)
	}
	lines = append(lines, entryLines(rec.Entries)...)
	return strings.Join(lines, "\n")
}

// WorkoutText renders a whole session: header, then each exercise in fetch
// order with its own note and entries.
func WorkoutText(rec model.WorkoutRecord) string {
	var lines []string
	lines = append(lines, "Workout on "+rec.WorkoutDate+" ("+rec.WorkoutKind+")")
	for _, ex := range rec.Exercises {
		lines = append(lines, ex.ExerciseName)
		if ex.Note != nil {
			lines = append(lines, "Note: "+*ex.Note)
		}
		lines = append(lines, entryLines(ex.Entries)...)
	}
	return strings.Join(lines, "\n")
}

func entryLines(entries []model.EntryRecord) []string {
	sorted := make([]model.EntryRecord, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EntryIndex < sorted[j].EntryIndex
	})
	lines := make([]string, 0, len(sorted))
	for _, entry := range sorted {
		parts := make([]string, 0, len(entry.Metrics))
		for _, metric := range entry.Metrics {
			parts = append(parts, metricText(metric))
		}
		lines = append(lines, "  "+strings.Join(parts, ", "))
	}
	return lines
}

func metricText(m model.Metric) string {
	var sb strings.Builder
	sb.WriteString(m.Key)
	sb.WriteString(" ")
	if m.ValueNumber != nil {
		sb.WriteString(strconv.FormatFloat(*m.ValueNumber, 'f', -1, 64))
	} else if m.ValueText != nil {
		sb.WriteString(*m.ValueText)
	}
	if m.Unit != nil {
		sb.WriteString(" ")
		sb.WriteString(*m.Unit)
	}
	return sb.String()
}
