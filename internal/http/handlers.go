package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jsonschema-validation-service/internal/models"
	"jsonschema-validation-service/internal/observability/logging"
	"jsonschema-validation-service/internal/observability/metrics"
	"jsonschema-validation-service/internal/schema"
)

// maxBodyBytes bounds request bodies read by the validation endpoints.
const maxBodyBytes = 8 << 20

const (
	routeValidate      = "validate"
	routeValidateNamed = "validate_named"
	routeSchemas       = "schemas"
)

// EventPublisher receives every decided validation outcome.
type EventPublisher interface {
	Publish(ctx context.Context, key string, ev models.ValidationEvent) error
}

type handler struct {
	validator *schema.Validator
	catalog   *schema.Catalog
	publisher EventPublisher
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// readStatus maps a body read error to 413 when the limit was hit and
// 400 otherwise.
func readStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, routeValidate, readStatus(err), err.Error())
		return
	}
	var req models.ValidateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, routeValidate, http.StatusBadRequest, "request body must be a JSON object with schema and document")
		return
	}

	res := h.validator.CheckBuffer(req.Schema, req.Document)
	h.finish(w, r, routeValidate, "", schema.SourceBufferBuffer, res)
}

func (h *handler) validateNamed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, ok := h.catalog.Lookup(name)
	if !ok {
		writeError(w, routeValidateNamed, http.StatusNotFound, "unknown schema "+strconv.Quote(name))
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, routeValidateNamed, readStatus(err), err.Error())
		return
	}

	res := h.validator.CheckFile(path, body)
	h.finish(w, r, routeValidateNamed, name, schema.SourceFileBuffer, res)
}

func (h *handler) listSchemas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, routeSchemas, http.StatusOK, models.SchemaList{Schemas: h.catalog.Names()})
}

// finish reports a decided outcome to the caller and the event stream.
func (h *handler) finish(w http.ResponseWriter, r *http.Request, route, schemaName, source string, res schema.Result) {
	reqID := middleware.GetReqID(r.Context())

	resp := models.ValidateResponse{
		Valid:      res.Valid,
		Kind:       string(res.Kind),
		Violations: toModel(res.Violations),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}

	ev := models.ValidationEvent{
		RequestID:  reqID,
		Schema:     schemaName,
		Source:     source,
		Valid:      res.Valid,
		Kind:       resp.Kind,
		Violations: resp.Violations,
		Timestamp:  time.Now().UnixMilli(),
	}
	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), reqID, ev); err != nil {
			l := logging.WithRequest("http", reqID)
			l.Warn().Err(err).Msg("Failed to publish validation event")
		}
	}

	writeJSON(w, route, http.StatusOK, resp)
}

func toModel(vs []schema.Violation) []models.Violation {
	if len(vs) == 0 {
		return nil
	}
	out := make([]models.Violation, len(vs))
	for i, v := range vs {
		out[i] = models.Violation{Location: v.Location, Message: v.Message}
	}
	return out
}

func writeError(w http.ResponseWriter, route string, code int, msg string) {
	writeJSON(w, route, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, route string, code int, v any) {
	metrics.DefaultMetrics.RecordHTTPRequest(route, strconv.Itoa(code))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
