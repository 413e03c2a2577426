package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/store/client"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	backend client.API
}

// NewHandler serves the analysis endpoints from any implementation of the
// client API, typically the in-memory demo store.
func NewHandler(backend client.API) *Handler {
	return &Handler{backend: backend}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/status", h.Status)
		r.Patch("/", h.Update)
		r.Put("/", h.Reset)
		r.Delete("/", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, domain.NewError(domain.KindValidation, "Invalid list query", err))
		return
	}

	page, err := h.backend.List(ctx, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapListPageDomainToApi(page))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.backend.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisWithResultDomainToApi(data))
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.backend.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.StatusResponse{Status: string(status)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input api.CreateAnalysisInput
	if err := decodeBody(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := h.backend.Create(r.Context(), adapters.MapCreateInputApiToDomain(input))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, adapters.MapAnalysisDomainToApi(analysis))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input api.UpdateAnalysisInput
	if err := decodeBody(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := h.backend.Update(r.Context(), chi.URLParam(r, "id"), adapters.MapPatchApiToDomain(input))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisDomainToApi(analysis))
}

// Reset only accepts {"status":"pending"}, the reanalysis trigger.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var input api.ResetAnalysisInput
	if err := decodeBody(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if domain.Status(input.Status) != domain.StatusPending {
		writeError(w, r, domain.NewError(domain.KindValidation,
			fmt.Sprintf("status must be %q", domain.StatusPending), nil))
		return
	}

	analysis, err := h.backend.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisDomainToApi(analysis))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseListQuery(r *http.Request) (domain.ListQuery, error) {
	values := r.URL.Query()
	query := domain.ListQuery{
		Status:    domain.Status(values.Get("status")),
		RiskLevel: domain.RiskLevel(values.Get("risk_level")),
		SortBy:    values.Get("sort_by"),
		SortOrder: domain.SortOrder(values.Get("sort_order")),
	}

	var err error
	if v := values.Get("page"); v != "" {
		if query.Page, err = strconv.Atoi(v); err != nil {
			return query, fmt.Errorf("invalid page %q", v)
		}
	}
	if v := values.Get("limit"); v != "" {
		if query.Limit, err = strconv.Atoi(v); err != nil {
			return query, fmt.Errorf("invalid limit %q", v)
		}
	}
	return query, query.Validate()
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return domain.NewError(domain.KindValidation, "Invalid request body", err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case domain.IsKind(err, domain.KindNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.KindValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", code).Msg("request rejected")
	}

	message := err.Error()
	var e *domain.Error
	if errors.As(err, &e) {
		message = e.Message
		if e.Cause != nil && code == http.StatusBadRequest {
			message = fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
	}
	writeJSON(w, r, code, api.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
