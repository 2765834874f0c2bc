package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"student-backend/internal/contract"
	"student-backend/internal/records"
	"student-backend/internal/session"
)

func sampleInput() records.StudentInput {
	return records.StudentInput{
		Name:       "Asha",
		Age:        20,
		Department: records.DepartmentCSE,
		Semesters: []records.SemesterEntry{
			{Semester: 3, InternalMarks: 210, UniversityMarks: 200, Attendance: 91.5},
			{Semester: 1, InternalMarks: 200, UniversityMarks: 210, Attendance: 85},
		},
	}
}

func semesterKeys(in []records.SemesterEntry) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		b, _ := json.Marshal(s)
		out = append(out, string(b))
	}
	sort.Strings(out)
	return out
}

func signedIn() *session.Session {
	s := session.New()
	s.SetToken("tok-1", time.Hour)
	return s
}

func TestPredictJSONRoundTrip(t *testing.T) {
	var got records.StudentInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.URL.Query().Get("model_type") != "dl" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(contract.PredictionResponse{RecordID: "rec-1", Prediction: "Good", Semesters: got.Semesters})
	}))
	defer srv.Close()

	c := New(srv.URL, signedIn())
	resp, err := c.Predict(context.Background(), PredictRequest{Input: sampleInput(), ModelType: "DL"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if resp.RecordID != "rec-1" || resp.Prediction != "Good" {
		t.Fatalf("unexpected response %+v", resp)
	}
	want := semesterKeys(sampleInput().Semesters)
	if strings.Join(semesterKeys(got.Semesters), "|") != strings.Join(want, "|") {
		t.Fatalf("semesters not reconstructed: %v", got.Semesters)
	}
}

func TestPredictMultipartRoundTrip(t *testing.T) {
	var (
		got       records.StudentInput
		photoData string
		photoType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict-with-photo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		got.Name = r.FormValue("name")
		got.Age, _ = strconv.Atoi(r.FormValue("age"))
		got.Department = records.Department(r.FormValue("department"))
		if err := json.Unmarshal([]byte(r.FormValue("semesters_json")), &got.Semesters); err != nil {
			t.Errorf("semesters_json: %v", err)
		}
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("photo: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		photoData = string(b)
		photoType = hdr.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(contract.PredictionResponse{RecordID: "rec-2"})
	}))
	defer srv.Close()

	c := New(srv.URL, signedIn())
	_, err := c.Predict(context.Background(), PredictRequest{
		Input: sampleInput(),
		Photo: &Photo{Filename: "asha.png", ContentType: "image/png", Data: strings.NewReader("png-bytes")},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	in := sampleInput()
	if got.Name != in.Name || got.Age != in.Age || got.Department != in.Department {
		t.Fatalf("scalar fields not reconstructed: %+v", got)
	}
	if strings.Join(semesterKeys(got.Semesters), "|") != strings.Join(semesterKeys(in.Semesters), "|") {
		t.Fatalf("semesters not reconstructed: %v", got.Semesters)
	}
	if photoData != "png-bytes" || photoType != "image/png" {
		t.Fatalf("photo not forwarded: %q %q", photoData, photoType)
	}
}

func TestUnauthorizedLogsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	sess := signedIn()
	var fired atomic.Int32
	sess.Subscribe(func() { fired.Add(1) })

	c := New(srv.URL, sess)
	_, err := c.History(context.Background(), 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 api error, got %v", err)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected logout observers to fire once, got %d", fired.Load())
	}
	if sess.Authenticated() {
		t.Fatalf("expected session to be cleared")
	}

	// next call fails locally without touching the network
	_, err = c.Me(context.Background())
	if !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if UserMessage(err) != "Please sign in first." {
		t.Fatalf("unexpected message %q", UserMessage(err))
	}
}

func TestLoginFailureDoesNotLogOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"invalid_credentials","detail":"Invalid email or password"}`))
	}))
	defer srv.Close()

	sess := session.New()
	var fired atomic.Int32
	sess.Subscribe(func() { fired.Add(1) })

	_, err := New(srv.URL, sess).Login(context.Background(), "a@b.co", "wrong")
	if UserMessage(err) != "Invalid email or password" {
		t.Fatalf("unexpected message %q", UserMessage(err))
	}
	if fired.Load() != 0 {
		t.Fatalf("login failure should not broadcast logout")
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in contract.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "a@b.co" {
			t.Errorf("unexpected email %q", in.Email)
		}
		_ = json.NewEncoder(w).Encode(contract.TokenResponse{AccessToken: "fresh", TokenType: "bearer", ExpiresIn: 3600})
	}))
	defer srv.Close()

	sess := session.New()
	if _, err := New(srv.URL, sess).Login(context.Background(), "a@b.co", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.AccessToken() != "fresh" {
		t.Fatalf("expected token stored, got %q", sess.AccessToken())
	}
}

func TestValidationIssuesBecomeMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"validation_error","detail":[{"loc":["body","semesters",0,"internal_marks"],"msg":"Internal + university marks must not exceed 600","type":"value_error"},{"loc":["body","age"],"msg":"Age must be between 15 and 30","type":"value_error"}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, signedIn()).Predict(context.Background(), PredictRequest{Input: sampleInput()})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %v", err)
	}
	if apiErr.Message != "semesters.0.internal_marks: Internal + university marks must not exceed 600" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	fe := apiErr.FieldErrors()
	if len(fe) != 2 || fe["age"] == "" {
		t.Fatalf("unexpected field errors %v", fe)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, signedIn()).History(context.Background(), 0)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if UserMessage(err) != "Could not reach backend. Is the API running?" {
		t.Fatalf("unexpected message %q", UserMessage(err))
	}
}

func TestPhotoReturnsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/records/rec-9/photo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	data, ct, err := New(srv.URL, signedIn()).Photo(context.Background(), "rec-9")
	if err != nil {
		t.Fatalf("photo: %v", err)
	}
	if string(data) != "jpeg" || ct != "image/jpeg" {
		t.Fatalf("unexpected photo %q %q", data, ct)
	}
}

func TestUnknownModelTypeRejectedLocally(t *testing.T) {
	c := New("http://127.0.0.1:0", signedIn())
	if _, err := c.Predict(context.Background(), PredictRequest{Input: sampleInput(), ModelType: "svm"}); err == nil {
		t.Fatalf("expected error for unknown model type")
	}
}

func TestUserMessageForFieldErrors(t *testing.T) {
	err := error(records.FieldErrors{"name": "Name is required"})
	if got := UserMessage(err); !strings.Contains(got, "fix") {
		t.Fatalf("unexpected message %q", got)
	}
	if UserMessage(nil) != "" {
		t.Fatalf("nil error should have no message")
	}
}
