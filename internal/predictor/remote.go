package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"student-backend/internal/contract"
	"student-backend/internal/shared/telemetry"
)

// Remote calls a model-serving HTTP service.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

type remoteRequest struct {
	ModelType string             `json:"model_type"`
	Features  map[string]float64 `json:"features"`
}

type remoteError struct {
	Detail string `json:"detail"`
}

// NewRemote creates a client for the model service at baseURL.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict implements Predictor. 404 and 503 from the service mean the
// requested model is not loaded.
func (r *Remote) Predict(ctx context.Context, features Vector, modelType string) (Result, error) {
	mt, ok := contract.NormalizeModelType(modelType)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown model type %q", ErrModelUnavailable, modelType)
	}
	jsonData, err := json.Marshal(remoteRequest{ModelType: mt, Features: features.Map()})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := r.baseURL + "/predict?" + url.Values{"model_type": {mt}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		detail := strings.TrimSpace(string(body))
		var re remoteError
		if json.Unmarshal(body, &re) == nil && re.Detail != "" {
			detail = re.Detail
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable {
			return Result{}, fmt.Errorf("%w: %s", ErrModelUnavailable, detail)
		}
		return Result{}, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, detail)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Prediction == "" {
		return Result{}, fmt.Errorf("model service returned no prediction")
	}
	if math.IsNaN(result.Confidence) || result.Confidence < 0 || result.Confidence > 1 {
		telemetry.Warn("prediction.invalid_confidence", map[string]any{
			"model_type": mt,
			"confidence": result.Confidence,
		})
		return Result{}, fmt.Errorf("model service returned confidence %v outside [0,1]", result.Confidence)
	}
	return result, nil
}
