package predictions

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"student-backend/internal/contract"
	"student-backend/internal/predictor"
	"student-backend/internal/records"
	"student-backend/internal/shared/server/middleware"
	"student-backend/internal/shared/server/respond"
	"student-backend/internal/shared/telemetry"
	"student-backend/internal/shared/util"
)

// multipart overhead allowed on top of the photo limit
const formSlack = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches prediction routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/predict", h.predict)
	rg.POST("/predict-with-photo", h.predictWithPhoto)
	rg.GET("/history", h.history)
	rg.GET("/records/:id/photo", h.photo)
}

func (h *Handler) predict(c *gin.Context) {
	modelType, ok := h.modelType(c)
	if !ok {
		return
	}
	var in records.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Validation(c, []contract.Issue{{
			Loc:  []any{"body"},
			Msg:  "Invalid JSON body: " + err.Error(),
			Type: "json_invalid",
		}})
		return
	}
	h.run(c, in, modelType, nil)
}

func (h *Handler) predictWithPhoto(c *gin.Context) {
	modelType, ok := h.modelType(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPhotoBytes()+formSlack)
	if err := c.Request.ParseMultipartForm(h.maxPhotoBytes() + formSlack); err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "photo_too_large", "Photo exceeds the upload limit")
			return
		}
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid multipart form")
		return
	}

	in, issues := formInput(c)
	if len(issues) > 0 {
		respond.Validation(c, issues)
		return
	}
	var semesters []records.SemesterEntry
	if err := json.Unmarshal([]byte(c.PostForm("semesters_json")), &semesters); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid semesters_json: "+err.Error())
		return
	}
	in.Semesters = semesters

	var photo *Photo
	fileHeader, err := c.FormFile("photo")
	switch {
	case err == nil && fileHeader.Size > 0:
		f, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "bad_request", "Unable to read photo")
			return
		}
		defer f.Close()
		photo = &Photo{FileName: fileHeader.Filename, Data: f}
	case err != nil && !errors.Is(err, http.ErrMissingFile):
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid multipart form")
		return
	}

	h.run(c, in, modelType, photo)
}

func (h *Handler) run(c *gin.Context, in records.StudentInput, modelType string, photo *Photo) {
	c.Set("modelType", modelType)
	resp, err := h.Svc.Predict(c.Request.Context(), middleware.TeacherIDFromContext(c), in, modelType, photo)
	if err != nil {
		var fe records.FieldErrors
		switch {
		case errors.As(err, &fe):
			respond.Validation(c, contract.IssuesFromFieldErrors(fe))
		case errors.Is(err, predictor.ErrModelUnavailable):
			respond.Error(c, http.StatusBadRequest, "model_unavailable", err.Error())
		case errors.Is(err, ErrInvalidPhoto), errors.Is(err, util.ErrInvalidFileName):
			respond.Error(c, http.StatusBadRequest, "invalid_photo", "Photo must be an image file")
		case errors.Is(err, ErrPhotoTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "photo_too_large", "Photo exceeds the upload limit")
		default:
			respond.Error(c, http.StatusInternalServerError, "prediction_failed", "Prediction failed: "+err.Error())
		}
		return
	}
	c.Set("recordId", resp.RecordID)
	respond.OK(c, resp)
}

func (h *Handler) history(c *gin.Context) {
	limit := DefaultHistoryLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxHistoryLimit {
			respond.Validation(c, []contract.Issue{{
				Loc:  []any{"query", "limit"},
				Msg:  "Limit must be an integer between 1 and " + strconv.Itoa(MaxHistoryLimit),
				Type: "value_error",
			}})
			return
		}
		limit = n
	}

	rows, err := h.Svc.History(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load history")
		return
	}
	respond.OK(c, rows)
}

func (h *Handler) photo(c *gin.Context) {
	recordID := c.Param("id")
	c.Set("recordId", recordID)

	rc, contentType, err := h.Svc.OpenPhoto(c.Request.Context(), recordID)
	if err != nil {
		if errors.Is(err, ErrNoPhoto) {
			respond.Error(c, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load photo")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("photo.stream_failed", map[string]any{
			"record_id": recordID,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) modelType(c *gin.Context) (string, bool) {
	modelType, ok := contract.NormalizeModelType(c.Query("model_type"))
	if !ok {
		respond.Validation(c, []contract.Issue{{
			Loc:  []any{"query", "model_type"},
			Msg:  "Input should be 'ml' or 'dl'",
			Type: "literal_error",
		}})
		return "", false
	}
	return modelType, true
}

func (h *Handler) maxPhotoBytes() int64 {
	if h.Svc.MaxPhotoBytes > 0 {
		return h.Svc.MaxPhotoBytes
	}
	return defaultMaxPhotoBytes
}

// formInput reads the scalar multipart fields. All of them are required.
func formInput(c *gin.Context) (records.StudentInput, []contract.Issue) {
	var (
		in     records.StudentInput
		issues []contract.Issue
	)
	missing := func(field string) {
		issues = append(issues, contract.Issue{Loc: []any{"body", field}, Msg: "Field required", Type: "missing"})
	}

	name, ok := c.GetPostForm("name")
	if !ok {
		missing("name")
	}
	in.Name = name

	if raw, ok := c.GetPostForm("age"); !ok {
		missing("age")
	} else if n, err := strconv.Atoi(strings.TrimSpace(raw)); err != nil {
		issues = append(issues, contract.Issue{Loc: []any{"body", "age"}, Msg: "Age must be an integer", Type: "int_parsing"})
	} else {
		in.Age = n
	}

	if dept, ok := c.GetPostForm("department"); !ok {
		missing("department")
	} else {
		in.Department = records.Department(dept)
	}

	if _, ok := c.GetPostForm("semesters_json"); !ok {
		missing("semesters_json")
	}
	return in, issues
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}
