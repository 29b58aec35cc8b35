package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/riskview/internal/domain/model"
)

// ManualReason tags refreshes requested over HTTP.
const ManualReason = "manual"

// RefreshDependencies defines the interface for triggering cycles.
type RefreshDependencies interface {
	Refresh(ctx context.Context, s model.Session) model.AggregateResult
	RequestRefresh(ctx context.Context, s model.Session, reason string) (string, bool)
}

// RefreshHandler handles refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshAck struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// HandleRefresh handles POST /refresh requests. With wait=true the cycle runs
// inline and the fresh listing is returned; otherwise it is queued.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	session := sessionFromRequest(r)

	wait := false
	if raw := r.URL.Query().Get("wait"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		wait = v
	}

	if wait {
		res := h.deps.Refresh(r.Context(), session)
		writeJSON(w, http.StatusOK, model.NewListing(res, res.Records()))
		return
	}

	id, ok := h.deps.RequestRefresh(r.Context(), session, ManualReason)
	if !ok {
		writeError(w, http.StatusTooManyRequests, codeBackpressure, NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, refreshAck{Status: "accepted", RequestID: id})
}
