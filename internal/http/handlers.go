package http

import (
	"errors"
	"net/http"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := encode(w, r, status, v); err != nil {
		a.Logger.ErrorContext(r.Context(), "responding to client", "err", err.Error())
	}
}

// writeError maps service errors onto status codes. Validation messages are
// safe to echo, anything unexpected is logged and hidden.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		a.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: validation.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		a.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		a.writeJSON(w, r, http.StatusNotFound, ErrorResponse{Error: "node not found"})
	case errors.Is(err, domain.ErrConflict):
		a.writeJSON(w, r, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		a.writeJSON(w, r, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	default:
		a.Logger.ErrorContext(ctx, "handling request", "err", err.Error(), "path", r.URL.Path)
		a.writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// @Summary Health check
// @Tags health
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// @Summary Readiness check
// @Tags health
// @Success 200 {string} string "ready"
// @Failure 503 {string} string "db unavailable"
// @Router /readyz [get]
func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.health != nil {
		if err := a.health.Ping(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "db ping failed", "err", err)
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// @Summary Search nodes
// @Description Evaluates a free-text query and returns the matching node identifiers.
// @Tags nodes
// @Produce json
// @Param q query string false "Search query"
// @Param network query []int false "Restrict to network ids" collectionFormat(multi)
// @Success 200 {object} SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/nodes [get]
func (a *API) handleSearchNodes(w http.ResponseWriter, r *http.Request) {
	networks, err := parseNetworks(r)
	if err != nil {
		a.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	vids, err := a.service.Search(r.Context(), r.URL.Query().Get("q"), networks)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if vids == nil {
		vids = []string{}
	}
	a.writeJSON(w, r, http.StatusOK, SearchResponse{VIDs: vids})
}

// @Summary Get node
// @Tags nodes
// @Produce json
// @Param vid path string true "Node identifier"
// @Success 200 {object} NodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/nodes/{vid} [get]
func (a *API) handleGetNode(w http.ResponseWriter, r *http.Request) {
	details, err := a.service.GetNode(r.Context(), r.PathValue("vid"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, detailsToResponse(details))
}

// @Summary Field history
// @Description Lists the past values of a tracked field, newest first.
// @Tags nodes
// @Produce json
// @Param vid path string true "Node identifier"
// @Param field path string true "Tracked field" Enums(name, category, abonent_number, server_number, version, version_decoded)
// @Success 200 {array} HistoryEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/nodes/{vid}/history/{field} [get]
func (a *API) handleNodeHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := a.service.History(r.Context(), r.PathValue("vid"), r.PathValue("field"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, historyToResponse(entries))
}

// @Summary Create node
// @Tags nodes
// @Accept json
// @Produce json
// @Param node body CreateNodeRequest true "Node payload"
// @Success 201 {object} NodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/nodes [post]
func (a *API) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[CreateNodeRequest](r)
	defer r.Body.Close()
	if err != nil {
		a.Logger.DebugContext(ctx, "unmarshaling node from request", "err", err.Error())
		a.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "bad request"})
		return
	}

	node, err := a.service.CreateNode(ctx, req.toInput())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusCreated, nodeToResponse(node))
}

// @Summary Update node
// @Description Changes tracked fields. The previous values stay queryable through history.
// @Tags nodes
// @Accept json
// @Produce json
// @Param vid path string true "Node identifier"
// @Param node body UpdateNodeRequest true "Changed fields"
// @Success 200 {object} NodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/nodes/{vid} [patch]
func (a *API) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[UpdateNodeRequest](r)
	defer r.Body.Close()
	if err != nil {
		a.Logger.DebugContext(ctx, "unmarshaling node update", "err", err.Error())
		a.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "bad request"})
		return
	}

	node, err := a.service.UpdateNode(ctx, r.PathValue("vid"), req.toInput())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, nodeToResponse(node))
}

// @Summary Delete node
// @Description Marks the node deleted; it stays reachable through search fallback.
// @Tags nodes
// @Param vid path string true "Node identifier"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/nodes/{vid} [delete]
func (a *API) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteNode(r.Context(), r.PathValue("vid")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
