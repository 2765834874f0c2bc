package predictor

import (
	"context"
	"fmt"
	"math"

	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/records"
)

// Score weights of the rule the training data was labelled with.
const (
	weightAvgPercentage  = 0.55
	weightLastPercentage = 0.25
	weightAvgAttendance  = 0.20
	weightAgePerYear     = 0.5

	thresholdGood    = 75.0
	thresholdAverage = 55.0

	referenceMarks      = 150.0
	referenceAttendance = 75.0
	referenceAge        = 20.0
)

// RuleBaseline scores a record with the labelling rule itself:
//
//	score = 0.55*avg% + 0.25*last% + 0.20*avg attendance + 0.5*(age-20)
//
// Contributions are the exact linear decomposition of the score around a
// reference student (150/150 marks, 75% attendance, age 20), scaled to
// fractions of 100 points.
type RuleBaseline struct{}

// Predict implements Predictor.
func (RuleBaseline) Predict(ctx context.Context, features Vector, modelType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	mt, ok := contract.NormalizeModelType(modelType)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown model type %q", ErrModelUnavailable, modelType)
	}

	type semester struct{ internal, university, attendance float64 }
	sems := map[int]*semester{}
	var age float64
	for _, nv := range features {
		f := nv.Feature
		if f.Kind == explain.KindScalar {
			if f.Name == "age" {
				age = nv.Value
			}
			continue
		}
		s := sems[f.Semester]
		if s == nil {
			s = &semester{}
			sems[f.Semester] = s
		}
		switch f.Metric {
		case explain.MetricInternal:
			s.internal = nv.Value
		case explain.MetricUniversity:
			s.university = nv.Value
		case explain.MetricAttendance:
			s.attendance = nv.Value
		}
	}

	// zero-filled semesters were not taken; a record of only zeros counts
	// as one empty semester
	taken := map[int]*semester{}
	last := 0
	for n, s := range sems {
		if s.internal == 0 && s.university == 0 && s.attendance == 0 {
			continue
		}
		taken[n] = s
		if n > last {
			last = n
		}
	}
	if len(taken) == 0 {
		taken[records.MinSemester] = &semester{}
		last = records.MinSemester
	}

	contrib := map[string]float64{}
	score := weightAvgPercentage*pct(referenceMarks*2) + weightLastPercentage*pct(referenceMarks*2) + weightAvgAttendance*referenceAttendance
	add := func(name string, delta float64) {
		contrib[name] += delta / 100
		score += delta
	}

	k := float64(len(taken))
	for n := records.MinSemester; n <= records.MaxSemesters; n++ {
		s, ok := taken[n]
		if !ok {
			continue
		}
		share := weightAvgPercentage / k
		if n == last {
			share += weightLastPercentage
		}
		add(explain.SemesterFeature(n, explain.MetricInternal).Name, share*pct(s.internal-referenceMarks))
		add(explain.SemesterFeature(n, explain.MetricUniversity).Name, share*pct(s.university-referenceMarks))
		add(explain.SemesterFeature(n, explain.MetricAttendance).Name, weightAvgAttendance/k*(s.attendance-referenceAttendance))
	}
	add("age", weightAgePerYear*(age-referenceAge))

	label := LabelNeedsAttention
	switch {
	case score >= thresholdGood:
		label = LabelGood
	case score >= thresholdAverage:
		label = LabelAverage
	}

	return Result{
		Prediction:    label,
		Confidence:    confidence(score),
		ModelUsed:     fmt.Sprintf("Rule Baseline (%s)", mt),
		Contributions: contrib,
	}, nil
}

// pct converts combined marks to a percentage of the per-semester total.
func pct(marks float64) float64 {
	return marks / records.TotalMax * 100
}

// confidence grows from 0.5 at a class boundary to 1.0 at 25 points away.
func confidence(score float64) float64 {
	d := math.Min(math.Abs(score-thresholdGood), math.Abs(score-thresholdAverage))
	c := 0.5 + math.Min(d, 25)/50
	return math.Round(c*10000) / 10000
}
