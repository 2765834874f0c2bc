package explain

import (
	"fmt"
	"strconv"
	"strings"

	"student-backend/internal/contract"
)

// Kind tells scalar features apart from semester-scoped ones.
type Kind int

const (
	KindScalar Kind = iota
	KindSemester
)

// Metric is the sub-measure a semester feature refers to.
type Metric string

const (
	MetricInternal   Metric = "internal"
	MetricUniversity Metric = "university"
	MetricAttendance Metric = "attendance"
)

// Metrics lists the per-semester metrics in feature-vector order.
var Metrics = []Metric{MetricInternal, MetricUniversity, MetricAttendance}

// Feature is a decoded feature identifier.
type Feature struct {
	Name     string
	Kind     Kind
	Semester int
	Metric   Metric
}

// SemesterFeature builds the identifier sem{n}_{metric}.
func SemesterFeature(semester int, metric Metric) Feature {
	return Feature{
		Name:     fmt.Sprintf("sem%d_%s", semester, metric),
		Kind:     KindSemester,
		Semester: semester,
		Metric:   metric,
	}
}

// ParseFeature decodes a wire identifier. Anything that is not of the form
// sem{digits}_{metric} with a known metric is a scalar feature. Out-of-range
// numbers such as sem0 still decode as semester features, so filtering drops
// them unless that semester was submitted.
func ParseFeature(name string) Feature {
	scalar := Feature{Name: name, Kind: KindScalar}
	rest, ok := strings.CutPrefix(name, "sem")
	if !ok {
		return scalar
	}
	num, metric, ok := strings.Cut(rest, "_")
	if !ok || num == "" {
		return scalar
	}
	for _, r := range num {
		if r < '0' || r > '9' {
			return scalar
		}
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return scalar
	}
	switch m := Metric(metric); m {
	case MetricInternal, MetricUniversity, MetricAttendance:
		return Feature{Name: name, Kind: KindSemester, Semester: n, Metric: m}
	default:
		return scalar
	}
}

// Label is the human-readable name used in explanations.
func (f Feature) Label() string {
	if f.Kind == KindSemester {
		switch f.Metric {
		case MetricInternal:
			return fmt.Sprintf("Semester %d internal marks", f.Semester)
		case MetricUniversity:
			return fmt.Sprintf("Semester %d university marks", f.Semester)
		case MetricAttendance:
			return fmt.Sprintf("Semester %d attendance", f.Semester)
		}
	}
	if f.Name == "age" {
		return "Age"
	}
	return f.Name
}

// Contribution is a FeatureContribution with its identifier decoded.
type Contribution struct {
	Feature      Feature
	Value        float64
	Contribution float64
}

// Decode parses every identifier once so later passes never re-read names.
func Decode(items []contract.FeatureContribution) []Contribution {
	out := make([]Contribution, 0, len(items))
	for _, it := range items {
		out = append(out, Contribution{
			Feature:      ParseFeature(it.Feature),
			Value:        it.Value,
			Contribution: it.Contribution,
		})
	}
	return out
}

// Encode converts decoded contributions back to wire form.
func Encode(items []Contribution) []contract.FeatureContribution {
	out := make([]contract.FeatureContribution, 0, len(items))
	for _, it := range items {
		out = append(out, contract.FeatureContribution{
			Feature:      it.Feature.Name,
			Value:        it.Value,
			Contribution: it.Contribution,
		})
	}
	return out
}
