package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/riskview/internal/domain/filter"
	"github.com/okian/riskview/internal/domain/model"
)

// Query parameters accepted by GET /subjects.
const (
	querySearch   = "search"
	queryCategory = "category"
)

// SubjectsDependencies defines the read operations over the snapshot.
type SubjectsDependencies interface {
	Subjects(ctx context.Context, s model.Session, search, category string) (model.Listing, error)
	Subject(ctx context.Context, s model.Session, id int) (model.SubjectRecord, error)
}

// SubjectsHandler handles subject listing and lookup requests.
type SubjectsHandler struct {
	deps SubjectsDependencies
}

// NewSubjectsHandler creates a new subjects handler.
func NewSubjectsHandler(deps SubjectsDependencies) *SubjectsHandler {
	return &SubjectsHandler{deps: deps}
}

// HandleList handles GET /subjects?search=&category= requests.
func (h *SubjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_subjects"
	q := r.URL.Query()
	list, err := h.deps.Subjects(r.Context(), sessionFromRequest(r), q.Get(querySearch), q.Get(queryCategory))
	if err != nil {
		if errors.Is(err, filter.ErrUnknownCategory) {
			writeError(w, http.StatusBadRequest, codeBadCategory, WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /subjects/{id} requests.
func (h *SubjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_subject"
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadID, WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := h.deps.Subject(r.Context(), sessionFromRequest(r), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rec)
	case errors.Is(err, model.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeBadID, WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err)
	}
}
