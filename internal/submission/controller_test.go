package submission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"student-backend/internal/client"
	"student-backend/internal/contract"
	"student-backend/internal/records"
	"student-backend/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePredictor struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	resp    contract.PredictionResponse
	err     error
	onCall  func()
}

func (f *fakePredictor) Predict(ctx context.Context, req client.PredictRequest) (contract.PredictionResponse, error) {
	f.calls.Add(1)
	if f.onCall != nil {
		f.onCall()
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return contract.PredictionResponse{}, f.err
	}
	resp := f.resp
	resp.Semesters = req.Input.Semesters
	return resp, nil
}

func makeValid(d *records.Draft) {
	d.Name = "Ravi"
	d.Age = 21
	d.UpdateSemesterField(0, records.FieldInternalMarks, 150)
	d.UpdateSemesterField(0, records.FieldUniversityMarks, 180)
	d.UpdateSemesterField(0, records.FieldAttendance, 90)
}

func TestSubmitInvalidDraftSkipsNetwork(t *testing.T) {
	api := &fakePredictor{}
	c := New(api, nil)
	c.Edit(func(d *records.Draft) { d.Name = "" })

	_, err := c.Submit(context.Background(), "ml", nil)
	var fe records.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "name")
	assert.Equal(t, int32(0), api.calls.Load())

	st := c.State()
	assert.Contains(t, st.FieldErrors, "name")
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.Busy)
}

func TestSubmitStoresResult(t *testing.T) {
	api := &fakePredictor{resp: contract.PredictionResponse{RecordID: "r1", Prediction: "Good"}}
	c := New(api, nil)
	c.Edit(makeValid)

	resp, err := c.Submit(context.Background(), "ml", nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.RecordID)

	st := c.State()
	require.NotNil(t, st.Result)
	assert.Equal(t, "Good", st.Result.Prediction)
	assert.Empty(t, st.Error)

	v, ok := c.View()
	require.True(t, ok)
	assert.Equal(t, "Good", v.Prediction)
}

func TestConcurrentSubmitAllowsOneInFlight(t *testing.T) {
	api := &fakePredictor{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		resp:    contract.PredictionResponse{RecordID: "r1"},
	}
	c := New(api, nil)
	c.Edit(makeValid)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = c.Submit(context.Background(), "ml", nil)
	}()
	<-api.entered

	assert.True(t, c.State().Busy)
	for i := 0; i < 5; i++ {
		_, err := c.Submit(context.Background(), "ml", nil)
		assert.True(t, errors.Is(err, ErrBusy))
	}

	// editing stays available while the request is pending
	c.Edit(func(d *records.Draft) { d.AddSemester() })
	assert.Equal(t, 2, c.State().Draft.Len())

	close(api.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, int32(1), api.calls.Load())
	assert.False(t, c.State().Busy)

	// the flag is cleared, so a follow-up submission goes through
	api.entered = nil
	_, err := c.Submit(context.Background(), "ml", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.calls.Load())
}

func TestSubmitFailureRecordsMessageAndClearsBusy(t *testing.T) {
	api := &fakePredictor{err: &client.APIError{StatusCode: 400, Message: "Model artifacts not found"}}
	c := New(api, nil)
	c.Edit(makeValid)

	_, err := c.Submit(context.Background(), "dl", nil)
	require.Error(t, err)
	st := c.State()
	assert.Equal(t, "Model artifacts not found", st.Error)
	assert.False(t, st.Busy)
	assert.Nil(t, st.Result)
}

func TestLogoutClearsState(t *testing.T) {
	sess := session.New()
	sess.SetToken("t", 0)
	api := &fakePredictor{resp: contract.PredictionResponse{RecordID: "r1"}}
	c := New(api, sess)
	defer c.Close()
	c.Edit(makeValid)

	_, err := c.Submit(context.Background(), "ml", nil)
	require.NoError(t, err)
	require.NotNil(t, c.State().Result)

	sess.Logout()
	st := c.State()
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Error)
	assert.Equal(t, records.DefaultName, st.Draft.Name)
}

func TestLogoutDuringSubmissionDoesNotDeadlock(t *testing.T) {
	sess := session.New()
	sess.SetToken("t", 0)
	api := &fakePredictor{err: &client.APIError{StatusCode: 401, Message: "Could not validate credentials"}}
	api.onCall = sess.Logout
	c := New(api, sess)
	defer c.Close()
	c.Edit(makeValid)

	_, err := c.Submit(context.Background(), "ml", nil)
	require.Error(t, err)
	assert.False(t, c.State().Busy)
}

func TestLogoutDuringSubmissionDropsResult(t *testing.T) {
	sess := session.New()
	sess.SetToken("t", 0)
	api := &fakePredictor{resp: contract.PredictionResponse{RecordID: "r1", Prediction: "Good"}}
	api.onCall = sess.Logout
	c := New(api, sess)
	defer c.Close()
	c.Edit(makeValid)

	_, err := c.Submit(context.Background(), "ml", nil)
	require.ErrorIs(t, err, ErrDiscarded)

	st := c.State()
	assert.False(t, sess.Authenticated())
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Error)
	assert.False(t, st.Busy)
	assert.Equal(t, records.DefaultName, st.Draft.Name)
	_, ok := c.View()
	assert.False(t, ok)
}

func TestResetDuringSubmissionDropsError(t *testing.T) {
	api := &fakePredictor{err: &client.APIError{StatusCode: 500, Message: "boom"}}
	c := New(api, nil)
	api.onCall = c.Reset
	c.Edit(makeValid)

	_, err := c.Submit(context.Background(), "ml", nil)
	require.ErrorIs(t, err, ErrDiscarded)
	st := c.State()
	assert.Empty(t, st.Error)
	assert.Empty(t, st.FieldErrors)

	// the next submission after a reset is recorded normally
	api.onCall = nil
	c.Edit(makeValid)
	_, err = c.Submit(context.Background(), "ml", nil)
	require.Error(t, err)
	assert.Equal(t, "boom", c.State().Error)
}
