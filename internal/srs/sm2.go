// Package srs schedules vocabulary reviews with the SuperMemo-2 algorithm.
package srs

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Quality is the self-assessed recall grade of a review, 0 to 5.
type Quality int

const (
	// Complete blackout, unable to recall
	QualityBlackout Quality = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect Quality = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar Quality = 2
	// Correct response but required significant effort
	QualityCorrectDifficult Quality = 3
	// Correct response after some hesitation
	QualityCorrectHesitation Quality = 4
	// Perfect response with no hesitation
	QualityPerfect Quality = 5
)

// Grades lists every valid quality, worst first.
var Grades = []Quality{
	QualityBlackout,
	QualityIncorrect,
	QualityIncorrectFamiliar,
	QualityCorrectDifficult,
	QualityCorrectHesitation,
	QualityPerfect,
}

// Valid reports whether q is within 0..5.
func (q Quality) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

var qualityNames = [...]string{
	"blackout",
	"incorrect",
	"incorrect-familiar",
	"correct-difficult",
	"correct-hesitation",
	"perfect",
}

func (q Quality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("quality(%d)", int(q))
	}
	return qualityNames[q]
}

// GradeNames maps the name of every grade to its value.
func GradeNames() map[string]int {
	names := make(map[string]int, len(Grades))
	for _, q := range Grades {
		names[q.String()] = int(q)
	}
	return names
}

const (
	// DefaultEasiness is the easiness factor of an item never reviewed.
	DefaultEasiness = 2.5
	// MinEasiness is the floor of the easiness factor.
	MinEasiness = 1.3
)

// State is the review state of one vocabulary item.
type State struct {
	Easiness     float64
	IntervalDays int
	Repetitions  int
	DueAt        time.Time
}

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Grades at or above the threshold count as recalled
	PassThreshold Quality
	// Longest interval between two reviews, in days
	MaxInterval int
}

// NewSM2 returns the scheduler with the standard settings.
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: QualityCorrectDifficult,
		MaxInterval:   365,
	}
}

// Review applies one graded review at now and returns the next state.
func (sm *SM2) Review(st State, quality Quality, now time.Time) (State, error) {
	if !quality.Valid() {
		return st, fmt.Errorf("quality %d out of range 0-5", quality)
	}
	if st.Easiness == 0 {
		st.Easiness = DefaultEasiness
	}

	q := float64(5 - quality)
	next := State{Easiness: st.Easiness + (0.1 - q*(0.08+q*0.02))}
	if next.Easiness < MinEasiness {
		next.Easiness = MinEasiness
	}

	if quality >= sm.PassThreshold {
		next.Repetitions = st.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(st.IntervalDays) * next.Easiness))
		}
		if next.IntervalDays > sm.MaxInterval {
			next.IntervalDays = sm.MaxInterval
		}
	} else {
		next.Repetitions = 0
		next.IntervalDays = 1
	}

	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	return next, nil
}

// Prioritize orders due items for a review session: items never reviewed
// first, then the hardest (lowest easiness), then the most overdue. At most
// limit items are returned; limit <= 0 means all.
func Prioritize[T any](items []T, state func(T) State, limit int) []T {
	sorted := append([]T(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := state(sorted[i]), state(sorted[j])
		if (a.Repetitions == 0) != (b.Repetitions == 0) {
			return a.Repetitions == 0
		}
		if a.Easiness != b.Easiness {
			return a.Easiness < b.Easiness
		}
		return a.DueAt.Before(b.DueAt)
	})
	if limit > 0 && len(sorted) > limit {
		return sorted[:limit]
	}
	return sorted
}

// IsMastered reports whether an item has been recalled often enough and with
// a long enough interval to be considered learned.
func IsMastered(st State) bool {
	return st.Repetitions >= 5 && st.IntervalDays >= 30
}
