package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/emissions"
)

// DataHandler handles emissions data submission and retrieval.
type DataHandler struct {
	svc *emissions.Service
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(svc *emissions.Service) *DataHandler {
	return &DataHandler{svc: svc}
}

// Submit handles POST /v1/data - submit a single record.
func (h *DataHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input models.SubmitRecordRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	rec, err := h.svc.Submit(r.Context(), toSubmission(input))
	if err != nil {
		writeEmissionsError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/data/%s", rec.ID)
	response.Created(w, r, location, models.NewRecordResponse(rec))
}

// SubmitBatch handles POST /v1/data/batch - submit up to the batch limit of
// records atomically.
func (h *DataHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var input models.SubmitBatchRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	subs := make([]emissions.Submission, 0, len(input.Records))
	for _, rec := range input.Records {
		subs = append(subs, toSubmission(rec))
	}

	recs, err := h.svc.SubmitBatch(r.Context(), subs)
	if err != nil {
		writeEmissionsError(w, r, err)
		return
	}

	resp := models.BatchResponse{
		Accepted: len(recs),
		Records:  make([]models.RecordResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		resp.Records = append(resp.Records, models.NewRecordResponse(rec))
	}
	response.Created(w, r, "", resp)
}

// GetRecord handles GET /v1/data/{recordId} - retrieve one record.
func (h *DataHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordId")
	if recordID == "" {
		response.BadRequest(w, r, "recordId is required", nil)
		return
	}

	rec, err := h.svc.Get(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, emissions.ErrRecordNotFound) {
			response.NotFound(w, r, "record not found")
			return
		}
		response.InternalError(w, r, "failed to load record")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewRecordResponse(rec))
}

// ListRecords handles GET /v1/data - list records with filters.
func (h *DataHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	opts := emissions.ListOptions{
		BuildingID: r.URL.Query().Get("buildingId"),
		DataType:   r.URL.Query().Get("dataType"),
		Limit:      100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 500", nil)
			return
		}
		opts.Limit = limit
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "from must be an RFC3339 timestamp", nil)
			return
		}
		opts.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "to must be an RFC3339 timestamp", nil)
			return
		}
		opts.To = to
	}

	recs, err := h.svc.List(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to list records")
		return
	}

	resp := models.RecordListResponse{
		Records: make([]models.RecordResponse, 0, len(recs)),
		Meta:    models.PagedResponseMeta{Limit: opts.Limit},
	}
	for _, rec := range recs {
		resp.Records = append(resp.Records, models.NewRecordResponse(rec))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

func toSubmission(input models.SubmitRecordRequest) emissions.Submission {
	return emissions.Submission{
		BuildingID: input.BuildingID,
		DataType:   input.DataType,
		Value:      input.Value,
		Unit:       input.Unit,
		Timestamp:  input.Timestamp,
		Notes:      input.Notes,
	}
}

// writeEmissionsError maps ingestion errors onto Problem responses with the
// matching error code.
func writeEmissionsError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := middleware.GetRequestID(r.Context())
	detail := err.Error()

	var problem *models.Problem
	switch {
	case errors.Is(err, emissions.ErrUnknownBuilding):
		problem = models.NewBadRequest(traceID, detail, nil).WithCode(models.CodeUnknownBuilding)
	case errors.Is(err, emissions.ErrInvalidUnit):
		problem = models.NewBadRequest(traceID, detail, nil).WithCode(models.CodeInvalidUnit)
	case errors.Is(err, emissions.ErrInvalidValue):
		problem = models.NewBadRequest(traceID, detail, nil).WithCode(models.CodeInvalidValue)
	case errors.Is(err, emissions.ErrDuplicateRecord):
		problem = models.NewBadRequest(traceID, detail, nil).WithCode(models.CodeDuplicateRecord)
	case errors.Is(err, emissions.ErrBatchTooLarge):
		problem = models.NewBadRequest(traceID, detail, nil).WithCode(models.CodeBatchTooLarge)
	default:
		problem = models.NewInternalError(traceID, "failed to store record")
	}
	response.Error(w, r, problem)
}
