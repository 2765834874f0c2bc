// Package contract holds the wire shapes shared by the API server and its client.
package contract

import (
	"strconv"
	"strings"
	"time"

	"student-backend/internal/records"
)

const (
	ModelTypeML = "ml"
	ModelTypeDL = "dl"
)

// NormalizeModelType maps an arbitrary query value onto ml or dl. ok is
// false for anything else.
func NormalizeModelType(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ModelTypeML:
		return ModelTypeML, true
	case ModelTypeDL:
		return ModelTypeDL, true
	default:
		return "", false
	}
}

// FeatureContribution is one named feature with its value and signed weight.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// PredictionResponse is returned by the predict endpoints.
type PredictionResponse struct {
	RecordID             string                  `json:"record_id"`
	Department           records.Department      `json:"department"`
	Semesters            []records.SemesterEntry `json:"semesters"`
	Prediction           string                  `json:"prediction"`
	Confidence           float64                 `json:"confidence"`
	ModelUsed            string                  `json:"model_used"`
	FeatureContributions []FeatureContribution   `json:"feature_contributions"`
	Timestamp            time.Time               `json:"timestamp"`
}

// HistoryRecord is one persisted prediction as listed by /history.
type HistoryRecord struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	Age                  int                     `json:"age"`
	Department           records.Department      `json:"department"`
	Semesters            []records.SemesterEntry `json:"semesters"`
	AvgPercentage        float64                 `json:"avg_percentage"`
	LastPercentage       float64                 `json:"last_percentage"`
	AvgAttendance        float64                 `json:"avg_attendance"`
	Prediction           string                  `json:"prediction"`
	Confidence           float64                 `json:"confidence"`
	ModelUsed            string                  `json:"model_used"`
	FeatureContributions []FeatureContribution   `json:"feature_contributions"`
	HasPhoto             bool                    `json:"has_photo"`
	CreatedAt            time.Time               `json:"created_at"`
}

// Response reshapes a history record into the predict response it came from.
func (h HistoryRecord) Response() PredictionResponse {
	return PredictionResponse{
		RecordID:             h.ID,
		Department:           h.Department,
		Semesters:            h.Semesters,
		Prediction:           h.Prediction,
		Confidence:           h.Confidence,
		ModelUsed:            h.ModelUsed,
		FeatureContributions: h.FeatureContributions,
		Timestamp:            h.CreatedAt,
	}
}

// SignupRequest registers a teacher account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// Teacher is the public profile of an account.
type Teacher struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Issue is one structured validation failure.
type Issue struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Path joins the location without its leading "body" segment.
func (i Issue) Path() string {
	parts := make([]string, 0, len(i.Loc))
	for idx, seg := range i.Loc {
		var s string
		switch v := seg.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			s = strconv.Itoa(v)
		default:
			continue
		}
		if idx == 0 && s == "body" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// ErrorResponse is the body of every non-2xx reply. Detail is a string or
// a list of Issue values.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail any    `json:"detail"`
}

// IssuesFromFieldErrors converts record validation failures into issues,
// ordered by path.
func IssuesFromFieldErrors(fe records.FieldErrors) []Issue {
	paths := fe.Paths()
	out := make([]Issue, 0, len(paths))
	for _, p := range paths {
		loc := []any{"body"}
		for _, seg := range strings.Split(p, ".") {
			if n, err := strconv.Atoi(seg); err == nil {
				loc = append(loc, n)
				continue
			}
			loc = append(loc, seg)
		}
		out = append(out, Issue{Loc: loc, Msg: fe[p], Type: "value_error"})
	}
	return out
}

// FieldErrorsFromIssues is the inverse of IssuesFromFieldErrors.
func FieldErrorsFromIssues(issues []Issue) records.FieldErrors {
	if len(issues) == 0 {
		return nil
	}
	fe := records.FieldErrors{}
	for _, is := range issues {
		p := is.Path()
		if _, ok := fe[p]; !ok {
			fe[p] = is.Msg
		}
	}
	return fe
}
