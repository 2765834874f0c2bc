// Package explain turns a prediction's contribution vector into display
// values: a semester-filtered list, bar weights, a short sentence summary
// and per-semester chart points.
package explain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"student-backend/internal/contract"
	"student-backend/internal/records"
)

// NotAvailable is returned by BuildExplanation when no contribution can be ranked.
const NotAvailable = "Explanation not available for this prediction."

const (
	magnitudeFloor = 1e-9
	topFactors     = 2
)

// FilterContributions keeps scalar features and the semester features whose
// semester appears in submitted. Order is preserved.
func FilterContributions(items []Contribution, submitted []records.SemesterEntry) []Contribution {
	present := make(map[int]struct{}, len(submitted))
	for _, s := range submitted {
		present[s.Semester] = struct{}{}
	}
	out := make([]Contribution, 0, len(items))
	for _, it := range items {
		if it.Feature.Kind == KindSemester {
			if _, ok := present[it.Feature.Semester]; !ok {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// NormalizedMagnitude returns a scale mapping each item to |contribution|
// divided by the largest finite |contribution| in items, within [0,1]. An
// infinite contribution scales to 1 and NaN to 0.
func NormalizedMagnitude(items []Contribution) func(Contribution) float64 {
	maxAbs := 0.0
	for _, it := range items {
		if a := math.Abs(it.Contribution); finite(a) && a > maxAbs {
			maxAbs = a
		}
	}
	denom := math.Max(maxAbs, magnitudeFloor)
	return func(it Contribution) float64 {
		if math.IsInf(it.Contribution, 0) {
			return 1
		}
		v := math.Abs(it.Contribution) / denom
		if !finite(v) {
			return 0
		}
		return math.Min(1, math.Max(0, v))
	}
}

// BuildExplanation names the two strongest drivers of the prediction. The
// top two items by |contribution| are split into supporting (>= 0) and
// opposing (< 0) factors; a side with no factor gets no sentence. Ties keep
// input order.
func BuildExplanation(prediction string, items []Contribution) string {
	ranked := make([]Contribution, 0, len(items))
	for _, it := range items {
		if finite(it.Contribution) {
			ranked = append(ranked, it)
		}
	}
	if len(ranked) == 0 {
		return NotAvailable
	}
	slices.SortStableFunc(ranked, func(a, b Contribution) int {
		return cmp.Compare(math.Abs(b.Contribution), math.Abs(a.Contribution))
	})
	if len(ranked) > topFactors {
		ranked = ranked[:topFactors]
	}

	var supporting, opposing []string
	for _, it := range ranked {
		factor := fmt.Sprintf("%s (%s)", it.Feature.Label(), formatValue(it.Value))
		if it.Contribution >= 0 {
			supporting = append(supporting, factor)
		} else {
			opposing = append(opposing, factor)
		}
	}

	subject := "the prediction"
	if p := strings.TrimSpace(prediction); p != "" {
		subject = strconv.Quote(p)
	}
	var sentences []string
	if len(supporting) > 0 {
		sentences = append(sentences, fmt.Sprintf("Main factors supporting %s: %s.", subject, strings.Join(supporting, " and ")))
	}
	if len(opposing) > 0 {
		sentences = append(sentences, fmt.Sprintf("Main factors against %s: %s.", subject, strings.Join(opposing, " and ")))
	}
	return strings.Join(sentences, " ")
}

// ChartPoint is one semester of the derived chart series.
type ChartPoint struct {
	SemesterLabel   string  `json:"semester_label"`
	Semester        int     `json:"semester"`
	Percentage      float64 `json:"percentage"`
	Attendance      float64 `json:"attendance"`
	InternalMarks   int     `json:"internal_marks"`
	UniversityMarks int     `json:"university_marks"`
}

// DeriveChartSeries computes one point per entry in input order.
func DeriveChartSeries(semesters []records.SemesterEntry) []ChartPoint {
	out := make([]ChartPoint, 0, len(semesters))
	for _, s := range semesters {
		out = append(out, ChartPoint{
			SemesterLabel:   "Sem " + strconv.Itoa(s.Semester),
			Semester:        s.Semester,
			Percentage:      Percentage(s),
			Attendance:      zeroIfNonFinite(s.Attendance),
			InternalMarks:   s.InternalMarks,
			UniversityMarks: s.UniversityMarks,
		})
	}
	return out
}

// Percentage is the share of TotalMax a semester scored, 0 when undefined.
func Percentage(s records.SemesterEntry) float64 {
	return zeroIfNonFinite(float64(s.Total()) / float64(records.TotalMax) * 100)
}

// SortBySemester returns a copy ordered by semester number.
func SortBySemester(semesters []records.SemesterEntry) []records.SemesterEntry {
	out := append([]records.SemesterEntry(nil), semesters...)
	slices.SortStableFunc(out, func(a, b records.SemesterEntry) int {
		return cmp.Compare(a.Semester, b.Semester)
	})
	return out
}

// Summary holds the aggregates shown next to a record.
type Summary struct {
	AvgPercentage  float64 `json:"avg_percentage"`
	LastPercentage float64 `json:"last_percentage"`
	AvgAttendance  float64 `json:"avg_attendance"`
}

// Summarize averages percentage and attendance over all semesters. The last
// percentage belongs to the highest semester number.
func Summarize(semesters []records.SemesterEntry) Summary {
	if len(semesters) == 0 {
		return Summary{}
	}
	var pctSum, attSum float64
	last := semesters[0]
	for _, s := range semesters {
		pctSum += Percentage(s)
		attSum += zeroIfNonFinite(s.Attendance)
		if s.Semester > last.Semester {
			last = s
		}
	}
	n := float64(len(semesters))
	return Summary{
		AvgPercentage:  zeroIfNonFinite(pctSum / n),
		LastPercentage: Percentage(last),
		AvgAttendance:  zeroIfNonFinite(attSum / n),
	}
}

// WeightedContribution pairs a contribution with its bar weight.
type WeightedContribution struct {
	Contribution
	Magnitude float64
}

// View is everything needed to render one prediction.
type View struct {
	Prediction    string
	Confidence    float64
	ModelUsed     string
	Contributions []WeightedContribution
	Explanation   string
	Series        []ChartPoint
	Summary       Summary
}

// Build composes decode, filter, weighting, explanation and chart
// derivation for a response. The series is ordered by semester number.
func Build(resp contract.PredictionResponse) View {
	filtered := FilterContributions(Decode(resp.FeatureContributions), resp.Semesters)
	scale := NormalizedMagnitude(filtered)
	weighted := make([]WeightedContribution, 0, len(filtered))
	for _, it := range filtered {
		weighted = append(weighted, WeightedContribution{Contribution: it, Magnitude: scale(it)})
	}
	return View{
		Prediction:    resp.Prediction,
		Confidence:    resp.Confidence,
		ModelUsed:     resp.ModelUsed,
		Contributions: weighted,
		Explanation:   BuildExplanation(resp.Prediction, filtered),
		Series:        DeriveChartSeries(SortBySemester(resp.Semesters)),
		Summary:       Summarize(resp.Semesters),
	}
}

func formatValue(v float64) string {
	if !finite(v) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func zeroIfNonFinite(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}
