// Package client talks to the student performance API on behalf of a
// signed-in teacher.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"student-backend/internal/contract"
	"student-backend/internal/records"
	"student-backend/internal/session"
)

const maxErrorBody = 1 << 20

// ErrUnreachable wraps transport failures: DNS, refused connections, resets.
var ErrUnreachable = errors.New("could not reach backend")

// Client is a client for the student performance API.
type Client struct {
	baseURL string
	session *session.Session
	plain   *http.Client
	authed  *http.Client
}

// Option customizes a Client.
type Option func(*http.Client)

// WithHTTPClient uses hc's transport and timeout for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(base *http.Client) {
		base.Transport = hc.Transport
		base.Timeout = hc.Timeout
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(base *http.Client) {
		base.Timeout = d
	}
}

// New creates a client. Authenticated calls attach the session's bearer
// token through an oauth2 transport.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	base := &http.Client{Timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(base)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		plain:   base,
		authed: &http.Client{
			Timeout:   base.Timeout,
			Transport: &oauth2.Transport{Source: sess, Base: base.Transport},
		},
	}
}

// Session returns the session this client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// Photo is an optional student picture sent with a prediction.
type Photo struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// PredictRequest is one submission of a validated record.
type PredictRequest struct {
	Input     records.StudentInput
	ModelType string
	Photo     *Photo
}

// Signup registers a teacher and signs the session in.
func (c *Client) Signup(ctx context.Context, in contract.SignupRequest) (contract.TokenResponse, error) {
	var out contract.TokenResponse
	if err := c.doJSON(ctx, c.plain, http.MethodPost, "/auth/signup", in, &out); err != nil {
		return contract.TokenResponse{}, fmt.Errorf("signup: %w", err)
	}
	c.storeToken(out)
	return out, nil
}

// Login exchanges credentials for a token and signs the session in.
func (c *Client) Login(ctx context.Context, email, password string) (contract.TokenResponse, error) {
	var out contract.TokenResponse
	in := contract.LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, c.plain, http.MethodPost, "/auth/login", in, &out); err != nil {
		return contract.TokenResponse{}, fmt.Errorf("login: %w", err)
	}
	c.storeToken(out)
	return out, nil
}

// Me returns the signed-in teacher.
func (c *Client) Me(ctx context.Context) (contract.Teacher, error) {
	var out contract.Teacher
	if err := c.doJSON(ctx, c.authed, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return contract.Teacher{}, fmt.Errorf("me: %w", err)
	}
	return out, nil
}

// Predict submits a record. Without a photo the body is JSON; with one it
// is multipart with the semesters JSON-encoded in semesters_json.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (contract.PredictionResponse, error) {
	modelType, ok := contract.NormalizeModelType(req.ModelType)
	if !ok {
		return contract.PredictionResponse{}, fmt.Errorf("predict: unknown model type %q", req.ModelType)
	}
	q := url.Values{"model_type": {modelType}}

	var out contract.PredictionResponse
	if req.Photo == nil {
		if err := c.doJSON(ctx, c.authed, http.MethodPost, "/predict?"+q.Encode(), req.Input, &out); err != nil {
			return contract.PredictionResponse{}, fmt.Errorf("predict: %w", err)
		}
		return out, nil
	}

	body, contentType, err := multipartBody(req.Input, req.Photo)
	if err != nil {
		return contract.PredictionResponse{}, fmt.Errorf("predict: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict-with-photo?"+q.Encode(), body)
	if err != nil {
		return contract.PredictionResponse{}, fmt.Errorf("predict: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if err := c.do(c.authed, httpReq, &out); err != nil {
		return contract.PredictionResponse{}, fmt.Errorf("predict: %w", err)
	}
	return out, nil
}

// History lists the most recent records, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]contract.HistoryRecord, error) {
	path := "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []contract.HistoryRecord
	if err := c.doJSON(ctx, c.authed, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return out, nil
}

// Photo downloads the stored photo of a record.
func (c *Client) Photo(ctx context.Context, recordID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/records/"+url.PathEscape(recordID)+"/photo", nil)
	if err != nil {
		return nil, "", fmt.Errorf("photo: failed to create request: %w", err)
	}
	var raw rawBody
	if err := c.do(c.authed, req, &raw); err != nil {
		return nil, "", fmt.Errorf("photo: %w", err)
	}
	return raw.data.Bytes(), raw.contentType, nil
}

type rawBody struct {
	data        bytes.Buffer
	contentType string
}

func (c *Client) storeToken(tok contract.TokenResponse) {
	if tok.AccessToken == "" {
		return
	}
	c.session.SetToken(tok.AccessToken, time.Duration(tok.ExpiresIn)*time.Second)
}

func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(hc, req, out)
}

// do sends req and decodes a 2xx body into out. A *rawBody receives the
// bytes as sent.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoToken):
			return session.ErrNoToken
		case req.Context().Err() != nil:
			return req.Context().Err()
		default:
			return fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && hc == c.authed {
			c.session.Logout()
		}
		return apiErr
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *rawBody:
		dst.contentType = resp.Header.Get("Content-Type")
		if _, err := io.Copy(&dst.data, resp.Body); err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

func multipartBody(in records.StudentInput, photo *Photo) (io.Reader, string, error) {
	semesters, err := json.Marshal(in.Semesters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal semesters: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", in.Name},
		{"age", strconv.Itoa(in.Age)},
		{"department", string(in.Department)},
		{"semesters_json", string(semesters)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	filename := photo.Filename
	if filename == "" {
		filename = "photo"
	}
	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create photo part: %w", err)
	}
	if _, err := io.Copy(part, photo.Data); err != nil {
		return nil, "", fmt.Errorf("failed to copy photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
