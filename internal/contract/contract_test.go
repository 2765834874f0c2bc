package contract

import (
	"encoding/json"
	"testing"

	"student-backend/internal/records"
)

func TestIssuesRoundTripThroughJSON(t *testing.T) {
	fe := records.FieldErrors{
		"semesters.2.internal_marks": "Internal + university marks must not exceed 600",
		"name":                       "Name is required",
	}
	issues := IssuesFromFieldErrors(fe)
	if len(issues) != 2 || issues[0].Path() != "name" {
		t.Fatalf("unexpected issues %+v", issues)
	}

	raw, err := json.Marshal(issues)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []Issue
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back := FieldErrorsFromIssues(decoded)
	if len(back) != 2 || back["semesters.2.internal_marks"] != fe["semesters.2.internal_marks"] {
		t.Fatalf("unexpected field errors %v", back)
	}
}

func TestNormalizeModelType(t *testing.T) {
	cases := map[string]string{"": "ml", "ML": "ml", " dl ": "dl"}
	for in, want := range cases {
		got, ok := NormalizeModelType(in)
		if !ok || got != want {
			t.Fatalf("NormalizeModelType(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := NormalizeModelType("svm"); ok {
		t.Fatalf("expected svm to be rejected")
	}
}
