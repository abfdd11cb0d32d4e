// Package admin serves the json api behind the admin dashboard.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/forms"
	"github.com/foomo/contentserver-pages/freelancers"
)

const Prefix = "/admin/api"

type Handler struct {
	logger      *zap.Logger
	forms       *forms.Service
	freelancers *freelancers.Service
	mux         *http.ServeMux
}

func NewHandler(logger *zap.Logger, formService *forms.Service, freelancerService *freelancers.Service) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		logger:      logger,
		forms:       formService,
		freelancers: freelancerService,
		mux:         http.NewServeMux(),
	}
	h.mux.HandleFunc("GET "+Prefix+"/forms", h.listForms)
	h.mux.HandleFunc("POST "+Prefix+"/forms", h.createForm)
	h.mux.HandleFunc("GET "+Prefix+"/forms/{id}", h.getForm)
	h.mux.HandleFunc("PUT "+Prefix+"/forms/{id}", h.updateForm)
	h.mux.HandleFunc("DELETE "+Prefix+"/forms/{id}", h.deleteForm)
	h.mux.HandleFunc("GET "+Prefix+"/submissions", h.listSubmissions)
	h.mux.HandleFunc("GET "+Prefix+"/submissions.csv", h.exportSubmissions)
	h.mux.HandleFunc("GET "+Prefix+"/submissions/{id}", h.getSubmission)
	h.mux.HandleFunc("DELETE "+Prefix+"/submissions/{id}", h.deleteSubmission)
	h.mux.HandleFunc("GET "+Prefix+"/freelancers", h.searchFreelancers)
	h.mux.HandleFunc("GET "+Prefix+"/freelancers.csv", h.exportFreelancers)
	h.mux.HandleFunc("GET "+Prefix+"/taxonomy", h.taxonomy)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to status codes. Unexpected errors are logged
// and hidden from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, forms.ErrNotFound), errors.Is(err, freelancers.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, forms.ErrInvalid), errors.Is(err, freelancers.ErrInvalid), errors.Is(err, freelancers.ErrInvalidFilter):
		status = http.StatusBadRequest
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("admin request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		message = http.StatusText(status)
	}
	h.writeJSON(w, status, errorResponse{Error: message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", forms.ErrInvalid, err)
	}
	return nil
}

func (h *Handler) listForms(w http.ResponseWriter, r *http.Request) {
	list, err := h.forms.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	var form forms.Form
	if err := decode(w, r, &form); err != nil {
		h.writeError(w, r, err)
		return
	}
	form.ID = ""
	created, err := h.forms.Create(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, form)
}

func (h *Handler) updateForm(w http.ResponseWriter, r *http.Request) {
	var form forms.Form
	if err := decode(w, r, &form); err != nil {
		h.writeError(w, r, err)
		return
	}
	form.ID = r.PathValue("id")
	updated, err := h.forms.Update(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", forms.ErrInvalid, name)
	}
	return n, nil
}

// queryTime accepts RFC 3339 timestamps and plain dates. The store treats the
// upper bound as exclusive, so a plain date used as one moves to the next day
// and the named day stays included.
func queryTime(r *http.Request, name string, upper bool) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be a date or RFC 3339 timestamp", forms.ErrInvalid, name)
}

func submissionFilter(r *http.Request) (forms.SubmissionFilter, error) {
	filter := forms.SubmissionFilter{
		FormID: r.URL.Query().Get("formId"),
		Query:  r.URL.Query().Get("q"),
	}
	var err error
	if filter.From, err = queryTime(r, "from", false); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(r, "to", true); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	filter, err := submissionFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.forms.Submissions(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) exportSubmissions(w http.ResponseWriter, r *http.Request) {
	filter, err := submissionFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := &csvResponse{w: w, filename: "submissions.csv"}
	h.writeCSV(w, r, out, h.forms.ExportSubmissions(r.Context(), filter, out))
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	submission, err := h.forms.Submission(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, submission)
}

func (h *Handler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.DeleteSubmission(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func freelancerFilter(r *http.Request) (freelancers.Filter, error) {
	query := r.URL.Query()
	filter := freelancers.Filter{
		Query:       query.Get("q"),
		Category:    query.Get("category"),
		Subcategory: query.Get("subcategory"),
	}
	for _, value := range query["tech"] {
		for _, tech := range strings.Split(value, ",") {
			if tech = strings.TrimSpace(tech); tech != "" {
				filter.TechStack = append(filter.TechStack, tech)
			}
		}
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *Handler) searchFreelancers(w http.ResponseWriter, r *http.Request) {
	filter, err := freelancerFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.freelancers.Search(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) exportFreelancers(w http.ResponseWriter, r *http.Request) {
	filter, err := freelancerFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := &csvResponse{w: w, filename: "freelancers.csv"}
	h.writeCSV(w, r, out, h.freelancers.Export(r.Context(), filter, out))
}

func (h *Handler) taxonomy(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.freelancers.Taxonomy())
}

// csvResponse sets the CSV headers on the first write, so an export that fails
// before producing output can still answer with a JSON error.
type csvResponse struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (c *csvResponse) Write(p []byte) (int, error) {
	if !c.started {
		c.started = true
		c.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		c.w.Header().Set("Content-Disposition", `attachment; filename="`+c.filename+`"`)
	}
	return c.w.Write(p)
}

func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, out *csvResponse, err error) {
	switch {
	case err == nil:
	case !out.started:
		h.writeError(w, r, err)
	default:
		h.logger.Warn("csv export aborted", zap.String("file", out.filename), zap.Error(err))
	}
}
