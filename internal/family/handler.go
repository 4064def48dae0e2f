package family

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

// CreateLink godoc
// @Summary      Ask to link an athlete to the current parent
// @Description  The link stays pending until the athlete confirms it.
// @Tags         family
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body family.CreateLinkRequest true "Link payload"
// @Success      201 {object} family.Link
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /family/links [post]
func (h *Handler) CreateLink(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateLinkRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	link, err := h.service.Link(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// ListLinks godoc
// @Summary      List athletes linked to the current parent
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} family.Link
// @Failure      403 {object} api.ErrorResponse
// @Router       /family/links [get]
func (h *Handler) ListLinks(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	links, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// DeleteLink godoc
// @Summary      Deactivate a parent-athlete link
// @Tags         family
// @Security     BearerAuth
// @Param        athleteID path int true "Athlete ID"
// @Success      204
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /family/links/{athleteID} [delete]
func (h *Handler) DeleteLink(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	athleteID, ok := api.ParamID(c, "athleteID")
	if !ok {
		return
	}

	if err := h.service.Unlink(c.Request.Context(), actor, athleteID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRequests godoc
// @Summary      List link requests waiting for the current athlete
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} family.Link
// @Failure      403 {object} api.ErrorResponse
// @Router       /family/requests [get]
func (h *Handler) ListRequests(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	links, err := h.service.PendingRequests(c.Request.Context(), actor)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// ConfirmLink godoc
// @Summary      Confirm a parent's link request
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Param        linkID path int true "Link ID"
// @Success      200 {object} family.Link
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /family/links/{linkID}/confirm [post]
func (h *Handler) ConfirmLink(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	linkID, ok := api.ParamID(c, "linkID")
	if !ok {
		return
	}

	link, err := h.service.Confirm(c.Request.Context(), actor, linkID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// RejectLink godoc
// @Summary      Reject or withdraw a parent's link
// @Tags         family
// @Security     BearerAuth
// @Param        linkID path int true "Link ID"
// @Success      204
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /family/links/{linkID}/reject [post]
func (h *Handler) RejectLink(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	linkID, ok := api.ParamID(c, "linkID")
	if !ok {
		return
	}

	if err := h.service.Reject(c.Request.Context(), actor, linkID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
