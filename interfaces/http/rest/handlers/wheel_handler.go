package handlers

import (
	"net/http"

	"axon-backend/application/commands"
	"axon-backend/application/commands/bus"
	"axon-backend/application/queries"
	querybus "axon-backend/application/queries/bus"
	"axon-backend/application/report"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/pkg/common"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WheelHandler handles wheel-related HTTP requests
type WheelHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewWheelHandler creates a new wheel handler
func NewWheelHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *WheelHandler {
	return &WheelHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errs,
		logger:     logger,
	}
}

// CreateWheelRequest is the body of POST /api/wheels
type CreateWheelRequest struct {
	Title string `json:"title"`
}

// SaveWheelRequest is the body of PUT /api/wheels/{wheelID}
type SaveWheelRequest struct {
	Title string          `json:"title"`
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// VisibilityRequest is the body of PATCH /api/wheels/{wheelID}
type VisibilityRequest struct {
	Visibility string `json:"visibility"`
}

// VoteRequest is the body of POST .../nodes/{nodeID}/vote
type VoteRequest struct {
	Vote float64 `json:"vote"`
}

func callerID(r *http.Request) string {
	userID, _ := common.GetUserID(r.Context())
	return userID
}

// ListWheels handles GET /api/wheels
func (h *WheelHandler) ListWheels(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListWheelsQuery{UserID: callerID(r)})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result.([]aggregates.WheelDocument))
}

// CreateWheel handles POST /api/wheels
func (h *WheelHandler) CreateWheel(w http.ResponseWriter, r *http.Request) {
	var req CreateWheelRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	userID := callerID(r)
	wheelID := aggregates.NewWheelID().String()
	cmd := commands.CreateWheelCommand{WheelID: wheelID, UserID: userID, Title: req.Title}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := h.queryBus.Ask(r.Context(), queries.GetWheelQuery{WheelID: wheelID, UserID: userID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Wheel created", zap.String("wheelID", wheelID), zap.String("userID", userID))
	w.Header().Set("Location", "/api/wheels/"+wheelID)
	common.RespondJSON(w, http.StatusCreated, doc.(aggregates.WheelDocument))
}

// GetWheel handles GET /api/wheels/{wheelID}
func (h *WheelHandler) GetWheel(w http.ResponseWriter, r *http.Request) {
	q := queries.GetWheelQuery{WheelID: chi.URLParam(r, "wheelID"), UserID: callerID(r)}
	doc, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, doc.(aggregates.WheelDocument))
}

// SaveWheel handles PUT /api/wheels/{wheelID}
func (h *WheelHandler) SaveWheel(w http.ResponseWriter, r *http.Request) {
	var req SaveWheelRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.SaveWheelCommand{
		WheelID: chi.URLParam(r, "wheelID"),
		UserID:  callerID(r),
		Title:   req.Title,
		Nodes:   req.Nodes,
		Edges:   req.Edges,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondWheel(w, r, cmd.WheelID)
}

// SetVisibility handles PATCH /api/wheels/{wheelID}
func (h *WheelHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.SetVisibilityCommand{
		WheelID:    chi.URLParam(r, "wheelID"),
		UserID:     callerID(r),
		Visibility: req.Visibility,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondWheel(w, r, cmd.WheelID)
}

// DeleteWheel handles DELETE /api/wheels/{wheelID}
func (h *WheelHandler) DeleteWheel(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteWheelCommand{WheelID: chi.URLParam(r, "wheelID"), UserID: callerID(r)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CastVote handles POST /api/wheels/{wheelID}/nodes/{nodeID}/vote and
// answers with the updated node
func (h *WheelHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.CastVoteCommand{
		WheelID: chi.URLParam(r, "wheelID"),
		NodeID:  chi.URLParam(r, "nodeID"),
		UserID:  callerID(r),
		Vote:    req.Vote,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetWheelQuery{WheelID: cmd.WheelID, UserID: cmd.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	doc := result.(aggregates.WheelDocument)
	for _, n := range doc.Nodes {
		if string(n.ID) == cmd.NodeID {
			common.RespondJSON(w, http.StatusOK, n)
			return
		}
	}
	h.errors.Handle(w, r, pkgerrors.NewNotFoundError("Node"))
}

// GenerateReport handles GET /api/wheels/{wheelID}/report
func (h *WheelHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	q := queries.GenerateReportQuery{WheelID: chi.URLParam(r, "wheelID"), UserID: callerID(r)}
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result.(*report.Report))
}

func (h *WheelHandler) respondWheel(w http.ResponseWriter, r *http.Request, wheelID string) {
	doc, err := h.queryBus.Ask(r.Context(), queries.GetWheelQuery{WheelID: wheelID, UserID: callerID(r)})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, doc.(aggregates.WheelDocument))
}
