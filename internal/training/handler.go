package training

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/api"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest godoc
// @Summary      Request an individual training
// @Description  An athlete asks for themselves, a parent for a linked athlete. The request starts pending.
// @Tags         trainings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      training.CreateTrainingRequest  true  "Training request"
// @Success      201      {object}  training.Request
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /trainings [post]
func (h *Handler) CreateRequest(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateTrainingRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	r, err := h.service.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// ListRequests godoc
// @Summary      List training requests visible to the caller
// @Tags         trainings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   training.Request
// @Failure      401  {object}  api.ErrorResponse
// @Router       /trainings [get]
func (h *Handler) ListRequests(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	requests, err := h.service.ListRequestsForActor(c.Request.Context(), actor)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// GetRequest godoc
// @Summary      Get a training request
// @Tags         trainings
// @Security     BearerAuth
// @Produce      json
// @Param        requestID  path      int  true  "Request ID"
// @Success      200        {object}  training.Request
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /trainings/{requestID} [get]
func (h *Handler) GetRequest(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "requestID")
	if !ok {
		return
	}

	r, err := h.service.GetRequest(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// AcceptRequest godoc
// @Summary      Accept a training request
// @Description  Addressed coach only. Date and window default to the requested ones; fails on overlap with another accepted session.
// @Tags         trainings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        requestID  path      int                             true   "Request ID"
// @Param        request    body      training.AcceptTrainingRequest  false  "Schedule and payment"
// @Success      200        {object}  training.Request
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /trainings/{requestID}/accept [post]
func (h *Handler) AcceptRequest(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "requestID")
	if !ok {
		return
	}

	var req AcceptTrainingRequest
	if c.Request.ContentLength != 0 && !api.BindAndValidate(c, &req) {
		return
	}

	r, err := h.service.AcceptRequest(c.Request.Context(), actor, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// DeclineRequest godoc
// @Summary      Decline a training request
// @Description  Addressed coach only; a reason is required.
// @Tags         trainings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        requestID  path      int                     true  "Request ID"
// @Param        request    body      training.ReasonRequest  true  "Reason"
// @Success      200        {object}  training.Request
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /trainings/{requestID}/decline [post]
func (h *Handler) DeclineRequest(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "requestID")
	if !ok {
		return
	}

	var req ReasonRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	r, err := h.service.DeclineRequest(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// CompleteRequest godoc
// @Summary      Mark an accepted training as held
// @Description  Addressed coach only. Completing twice is not an error.
// @Tags         trainings
// @Security     BearerAuth
// @Produce      json
// @Param        requestID  path      int  true  "Request ID"
// @Success      200        {object}  training.Request
// @Failure      403        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /trainings/{requestID}/complete [post]
func (h *Handler) CompleteRequest(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "requestID")
	if !ok {
		return
	}

	r, err := h.service.CompleteRequest(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
