package class

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/api"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create a class
// @Description  Coach-only: create a recurring weekly class owned by the caller
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body class.CreateClassRequest true "Class payload"
// @Success      201 {object} class.Class
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateClassRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary      List classes
// @Description  Active classes by default; all=true includes cancelled and completed ones
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        coach_id query int  false "Only classes of this coach"
// @Param        all      query bool false "Include inactive classes"
// @Success      200 {array} class.Class
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	filter := ListFilter{ActiveOnly: c.Query("all") != "true"}
	if v := c.Query("coach_id"); v != "" {
		coachID, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid coach ID"})
			return
		}
		filter.CoachID = &coachID
	}

	classes, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Get a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} class.Class
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [get]
func (h *Handler) GetClass(c *gin.Context) {
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// @Summary      Update a class
// @Description  Owner-only: change fields of an active class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Param        request body class.UpdateClassRequest true "Fields to change"
// @Success      200 {object} class.Class
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID} [put]
func (h *Handler) UpdateClass(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	var req UpdateClassRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// @Summary      Cancel a class
// @Description  Owner-only soft delete; existing bookings are kept
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} class.Class
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/cancel [post]
func (h *Handler) CancelClass(c *gin.Context) {
	h.close(c, StatusCancelled)
}

// @Summary      Complete a class
// @Description  Owner-only: mark the class as finished for the season
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} class.Class
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/complete [post]
func (h *Handler) CompleteClass(c *gin.Context) {
	h.close(c, StatusCompleted)
}

func (h *Handler) close(c *gin.Context, to Status) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	closed, err := h.service.Close(c.Request.Context(), actor, id, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, closed)
}

// @Summary      Next occurrence of a class
// @Description  The next class date with confirmed seats and remaining capacity
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} class.Occurrence
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/next [get]
func (h *Handler) NextOccurrence(c *gin.Context) {
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	occ, err := h.service.NextOccurrence(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, occ)
}

// @Summary      Upcoming occurrences of a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path  int true  "Class ID"
// @Param        count   query int false "How many occurrences (1-12, default 4)"
// @Success      200 {array} class.Occurrence
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/occurrences [get]
func (h *Handler) Upcoming(c *gin.Context) {
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", "4"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid count"})
		return
	}

	occs, err := h.service.Upcoming(c.Request.Context(), id, count)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, occs)
}
