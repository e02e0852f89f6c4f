package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settlementapp "github.com/jtrade/backend/internal/application/settlement"
)

// PositionHandler handles party position API endpoints
type PositionHandler struct {
	BaseHandler
	positionService *settlementapp.PositionService
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(positionService *settlementapp.PositionService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// GetPartyPosition godoc
//
//	@ID				getPartyPosition
//	@Summary		Get a party's current position
//	@Description	Returns the party's current aggregate receivable position across the gold, silver and cash buckets.
//	@Tags			positions
//	@Produce		json
//	@Param			id	path		string	true	"Party ID"	format(uuid)
//	@Success		200	{object}	APIResponse[settlement.PartyPosition]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/positions/parties/{id} [get]
func (h *PositionHandler) GetPartyPosition(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	position, err := h.positionService.PartyPosition(c.Request.Context(), partyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, position)
}

// GetPartyPositionDelta godoc
//
//	@ID				getPartyPositionDelta
//	@Summary		Get a party's position movement since a point in time
//	@Description	Compares the party's current position against its position as of the given timestamp and returns the bucket-wise difference.
//	@Tags			positions
//	@Produce		json
//	@Param			id		path		string	true	"Party ID"	format(uuid)
//	@Param			since	query		string	true	"Baseline timestamp (RFC 3339)"
//	@Success		200		{object}	APIResponse[settlementapp.PartyPositionDeltaResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/positions/parties/{id}/delta [get]
func (h *PositionHandler) GetPartyPositionDelta(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	sinceRaw := c.Query("since")
	if sinceRaw == "" {
		h.BadRequest(c, "Missing required query parameter: since")
		return
	}
	since, err := time.Parse(time.RFC3339, sinceRaw)
	if err != nil {
		h.BadRequest(c, "Invalid since timestamp, expected RFC 3339")
		return
	}

	result, err := h.positionService.PartyPositionDelta(c.Request.Context(), partyID, since)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all position routes
func (h *PositionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	parties := rg.Group("/positions/parties")
	{
		parties.GET("/:id", h.GetPartyPosition)
		parties.GET("/:id/delta", h.GetPartyPositionDelta)
	}
}
