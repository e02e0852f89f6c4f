package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settlementapp "github.com/jtrade/backend/internal/application/settlement"
	"github.com/shopspring/decimal"
)

// MatchHandler handles receipt-to-order matching API endpoints
type MatchHandler struct {
	BaseHandler
	matchService *settlementapp.MatchService
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matchService *settlementapp.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// ConfirmMatchRequest is the confirm-match request body. WeightG may be
// omitted only for the cash-only material.
type ConfirmMatchRequest struct {
	OrderLineID  string   `json:"order_line_id" binding:"required,uuid"`
	MaterialCode string   `json:"material_code" binding:"required"`
	WeightG      *float64 `json:"weight_g" binding:"omitempty,gt=0"`
}

// ListCandidates godoc
//
//	@ID				listMatchCandidates
//	@Summary		List match candidates for a receipt line
//	@Description	Returns the scorer's ranked order-line candidates for an unmatched receipt line, best first.
//	@Tags			match
//	@Produce		json
//	@Param			id	path		string	true	"Receipt line ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]settlement.MatchCandidate]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/match/receipt-lines/{id}/candidates [get]
func (h *MatchHandler) ListCandidates(c *gin.Context) {
	receiptLineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt line ID format")
		return
	}

	candidates, err := h.matchService.ListCandidates(c.Request.Context(), receiptLineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, candidates)
}

// Validate godoc
//
//	@ID				validateMatch
//	@Summary		Validate a match before confirming
//	@Description	Runs the confirmation gate for the chosen candidate and weight without binding, for inline feedback on the order screen.
//	@Tags			match
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Receipt line ID"	format(uuid)
//	@Param			request	body		ConfirmMatchRequest	true	"Match to validate"
//	@Success		200		{object}	APIResponse[settlementapp.ConfirmMatchResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/match/receipt-lines/{id}/validate [post]
func (h *MatchHandler) Validate(c *gin.Context) {
	receiptLineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt line ID format")
		return
	}

	req, ok := h.bindConfirmRequest(c, receiptLineID)
	if !ok {
		return
	}

	result, err := h.matchService.ValidateMatch(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// bindConfirmRequest binds and parses the confirm-match body into the service
// request. Responds with 400 and reports false when the body is unusable.
func (h *MatchHandler) bindConfirmRequest(c *gin.Context, receiptLineID uuid.UUID) (settlementapp.ConfirmMatchRequest, bool) {
	var req ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return settlementapp.ConfirmMatchRequest{}, false
	}

	orderLineID, err := uuid.Parse(req.OrderLineID)
	if err != nil {
		h.BadRequest(c, "Invalid order line ID format")
		return settlementapp.ConfirmMatchRequest{}, false
	}

	var weight *decimal.Decimal
	if req.WeightG != nil {
		w := decimal.NewFromFloat(*req.WeightG)
		weight = &w
	}

	return settlementapp.ConfirmMatchRequest{
		ReceiptLineID: receiptLineID,
		OrderLineID:   orderLineID,
		MaterialCode:  req.MaterialCode,
		WeightGrams:   weight,
	}, true
}

// Confirm godoc
//
//	@ID				confirmMatch
//	@Summary		Confirm a receipt-to-order match
//	@Description	Validates the operator-entered weight against the chosen candidate and performs the one-shot bind. A receipt line can only ever be bound once.
//	@Tags			match
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Receipt line ID"	format(uuid)
//	@Param			request	body		ConfirmMatchRequest	true	"Match confirmation"
//	@Success		200		{object}	APIResponse[settlementapp.ConfirmMatchResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/match/receipt-lines/{id}/confirm [post]
func (h *MatchHandler) Confirm(c *gin.Context) {
	receiptLineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt line ID format")
		return
	}

	req, ok := h.bindConfirmRequest(c, receiptLineID)
	if !ok {
		return
	}

	result, err := h.matchService.Confirm(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all match routes
func (h *MatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receiptLines := rg.Group("/match/receipt-lines")
	{
		receiptLines.GET("/:id/candidates", h.ListCandidates)
		receiptLines.POST("/:id/validate", h.Validate)
		receiptLines.POST("/:id/confirm", h.Confirm)
	}
}
