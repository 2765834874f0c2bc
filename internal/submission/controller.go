// Package submission owns one draft per signed-in session and enforces that
// at most one prediction request is in flight for it.
package submission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"student-backend/internal/client"
	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/records"
	"student-backend/internal/session"
)

var (
	// ErrBusy is returned when a submission is already pending.
	ErrBusy = errors.New("submission already in progress")
	// ErrDiscarded is returned when logout or Reset happened while the
	// request was in flight. Its outcome is not recorded.
	ErrDiscarded = errors.New("submission discarded after reset")
)

// Predictor sends a validated record; *client.Client implements it.
type Predictor interface {
	Predict(ctx context.Context, req client.PredictRequest) (contract.PredictionResponse, error)
}

// State is a snapshot of the controller for rendering.
type State struct {
	Draft       *records.Draft
	Result      *contract.PredictionResponse
	Error       string
	FieldErrors records.FieldErrors
	Busy        bool
}

// Controller serializes edits to a draft and gates its submission.
type Controller struct {
	api Predictor

	mu          sync.Mutex
	draft       *records.Draft
	result      *contract.PredictionResponse
	errMsg      string
	fieldErrors records.FieldErrors
	// generation is bumped by clear; responses from an older generation are dropped
	generation uint64

	busy        atomic.Bool
	unsubscribe func()
}

// New creates a controller with a fresh draft. When sess is non-nil the
// controller clears itself on logout until Close is called.
func New(api Predictor, sess *session.Session) *Controller {
	c := &Controller{api: api, draft: records.NewDraft()}
	if sess != nil {
		c.unsubscribe = sess.Subscribe(c.clear)
	}
	return c
}

// Close stops listening for logout.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Edit applies fn to the draft. It is allowed while a submission is pending.
func (c *Controller) Edit(fn func(d *records.Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.draft)
}

// Reset discards the draft and any result.
func (c *Controller) Reset() {
	c.clear()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Draft: c.draft.Clone(),
		Error: c.errMsg,
		Busy:  c.busy.Load(),
	}
	if c.result != nil {
		r := *c.result
		st.Result = &r
	}
	if len(c.fieldErrors) > 0 {
		st.FieldErrors = make(records.FieldErrors, len(c.fieldErrors))
		for k, v := range c.fieldErrors {
			st.FieldErrors[k] = v
		}
	}
	return st
}

// View renders the latest result, if any.
func (c *Controller) View() (explain.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return explain.View{}, false
	}
	return explain.Build(*c.result), true
}

// Submit validates the draft and sends it. Invalid drafts return
// records.FieldErrors without any request being made. A second call while
// one is pending returns ErrBusy. The response becomes the latest result
// even if the draft was edited meanwhile, but not if the controller was
// cleared by logout or Reset; that case returns ErrDiscarded.
func (c *Controller) Submit(ctx context.Context, modelType string, photo *client.Photo) (contract.PredictionResponse, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return contract.PredictionResponse{}, ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	in, err := c.draft.Validate()
	if err != nil {
		var fe records.FieldErrors
		if errors.As(err, &fe) {
			c.fieldErrors = fe
		}
		c.errMsg = client.UserMessage(err)
		c.mu.Unlock()
		return contract.PredictionResponse{}, err
	}
	c.fieldErrors = nil
	c.errMsg = ""
	gen := c.generation
	c.mu.Unlock()

	resp, err := c.api.Predict(ctx, client.PredictRequest{Input: in, ModelType: modelType, Photo: photo})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return contract.PredictionResponse{}, ErrDiscarded
	}
	if err != nil {
		c.errMsg = client.UserMessage(err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			c.fieldErrors = apiErr.FieldErrors()
		}
		return contract.PredictionResponse{}, err
	}
	c.result = &resp
	return resp, nil
}

func (c *Controller) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.draft.Reset()
	c.result = nil
	c.errMsg = ""
	c.fieldErrors = nil
}
