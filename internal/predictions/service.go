package predictions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/predictor"
	"student-backend/internal/records"
	"student-backend/internal/shared/metrics"
	"student-backend/internal/shared/storage/object"
	"student-backend/internal/shared/telemetry"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500

	defaultMaxPhotoBytes = 5 << 20
)

var (
	ErrInvalidPhoto  = errors.New("photo must be an image")
	ErrPhotoTooLarge = errors.New("photo too large")
	ErrNoPhoto       = errors.New("photo not found")
)

// Photo is an uploaded student picture.
type Photo struct {
	FileName string
	Data     io.Reader
}

// Service validates records, runs the predictor and persists the outcome.
type Service struct {
	Repo          Repo
	Store         object.ObjectStore
	Predictor     predictor.Predictor
	MaxPhotoBytes int64
}

// Predict classifies in with the requested model. FieldErrors are returned
// before any model call. A photo, when given, is stored with the record.
func (s *Service) Predict(ctx context.Context, teacherID string, in records.StudentInput, modelType string, photo *Photo) (contract.PredictionResponse, error) {
	in = normalizeInput(in)
	if fe := records.ValidateInput(in); fe != nil {
		return contract.PredictionResponse{}, fe
	}

	var stored *object.Object
	if photo != nil {
		obj, err := s.savePhoto(ctx, teacherID, photo)
		if err != nil {
			return contract.PredictionResponse{}, err
		}
		stored = &obj
	}

	vector := predictor.BuildVector(in)
	result, err := s.classify(ctx, vector, modelType)
	if err != nil {
		s.discardPhoto(stored)
		return contract.PredictionResponse{}, err
	}

	rec := Record{
		ID:            uuid.NewString(),
		TeacherID:     teacherID,
		Input:         in,
		Summary:       roundSummary(explain.Summarize(in.Semesters)),
		Prediction:    result.Prediction,
		Confidence:    result.Confidence,
		ModelType:     modelType,
		ModelUsed:     result.ModelUsed,
		Contributions: explain.Encode(vector.Contributions(result)),
		CreatedAt:     time.Now().UTC(),
	}
	if stored != nil {
		rec.PhotoKey = stored.Key
		rec.PhotoContentType = stored.ContentType
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		s.discardPhoto(stored)
		return contract.PredictionResponse{}, fmt.Errorf("save record: %w", err)
	}

	telemetry.Info("prediction.recorded", map[string]any{
		"record_id":  rec.ID,
		"teacher_id": teacherID,
		"model_type": modelType,
		"prediction": rec.Prediction,
		"has_photo":  rec.HasPhoto(),
	})
	return rec.Response(), nil
}

// History lists the most recent records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]contract.HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	recs, err := s.Repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]contract.HistoryRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.History())
	}
	return out, nil
}

// OpenPhoto returns the stored photo of a record and its content type.
func (s *Service) OpenPhoto(ctx context.Context, recordID string) (io.ReadCloser, string, error) {
	rec, err := s.Repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrNoPhoto
		}
		return nil, "", err
	}
	if !rec.HasPhoto() {
		return nil, "", ErrNoPhoto
	}
	rc, err := s.Store.Open(ctx, rec.PhotoKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, "", ErrNoPhoto
		}
		return nil, "", err
	}
	ct := rec.PhotoContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return rc, ct, nil
}

func (s *Service) classify(ctx context.Context, vector predictor.Vector, modelType string) (predictor.Result, error) {
	metrics.IncPredictionStarted(modelType)
	start := time.Now()
	result, err := s.Predictor.Predict(ctx, vector, modelType)
	metrics.ObservePredictionDuration(modelType, time.Since(start))
	if err != nil {
		metrics.IncPredictionFailed(modelType)
		telemetry.Warn("prediction.failed", map[string]any{
			"model_type": modelType,
			"error":      err.Error(),
		})
		return predictor.Result{}, err
	}
	metrics.IncPredictionCompleted(modelType)
	return result, nil
}

func (s *Service) savePhoto(ctx context.Context, teacherID string, photo *Photo) (object.Object, error) {
	limit := s.MaxPhotoBytes
	if limit <= 0 {
		limit = defaultMaxPhotoBytes
	}
	obj, err := s.Store.Save(ctx, teacherID, photoName(photo.FileName), io.LimitReader(photo.Data, limit+1))
	if err != nil {
		return object.Object{}, fmt.Errorf("save photo: %w", err)
	}
	switch {
	case obj.SizeBytes > limit:
		s.discardPhoto(&obj)
		return object.Object{}, ErrPhotoTooLarge
	case !strings.HasPrefix(obj.ContentType, "image/"):
		s.discardPhoto(&obj)
		return object.Object{}, ErrInvalidPhoto
	}
	return obj, nil
}

func (s *Service) discardPhoto(obj *object.Object) {
	if obj == nil {
		return
	}
	if err := s.Store.Delete(context.Background(), obj.Key); err != nil {
		telemetry.Warn("photo.discard_failed", map[string]any{
			"key":   obj.Key,
			"error": err.Error(),
		})
	}
}

func photoName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "photo"
	}
	return name
}

func normalizeInput(in records.StudentInput) records.StudentInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Department = records.ParseDepartment(string(in.Department))
	return in
}

func roundSummary(s explain.Summary) explain.Summary {
	return explain.Summary{
		AvgPercentage:  round2(s.AvgPercentage),
		LastPercentage: round2(s.LastPercentage),
		AvgAttendance:  round2(s.AvgAttendance),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
