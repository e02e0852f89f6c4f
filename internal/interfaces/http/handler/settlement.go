package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settlementapp "github.com/jtrade/backend/internal/application/settlement"
	"github.com/jtrade/backend/internal/domain/settlement"
)

// SettlementHandler handles settlement decomposition API endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *settlementapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *settlementapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// parseMode reads the mode query parameter, defaulting when absent. Validation
// of the parsed value is left to the service so the error shape stays uniform.
func parseMode(c *gin.Context, fallback settlement.DecompositionMode) settlement.DecompositionMode {
	if raw := c.Query("mode"); raw != "" {
		return settlement.DecompositionMode(raw)
	}
	return fallback
}

// Decompose godoc
//
//	@ID				decomposeSettlementLine
//	@Summary		Decompose a line into settlement buckets
//	@Description	Computes the gold, silver and cash-labor buckets for a line. Return lines are priced off their source line.
//	@Tags			settlement
//	@Produce		json
//	@Param			id		path		string	true	"Line ID"	format(uuid)
//	@Param			mode	query		string	false	"Decomposition mode"	Enums(RAW, AR_ALIGNED)	default(RAW)
//	@Success		200		{object}	APIResponse[settlementapp.LineDecompositionResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/settlement/lines/{id}/decomposition [get]
func (h *SettlementHandler) Decompose(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	mode := parseMode(c, settlement.ModeRaw)

	result, err := h.settlementService.DecomposeLine(c.Request.Context(), lineID, mode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ExplainAdjustments godoc
//
//	@ID				explainSettlementAdjustments
//	@Summary		Explain a line's adjustment breakdown
//	@Description	Normalizes the line's raw adjustment blob and reconciles it against the policy and prefill snapshots.
//	@Tags			settlement
//	@Produce		json
//	@Param			id	path		string	true	"Line ID"	format(uuid)
//	@Success		200	{object}	APIResponse[settlementapp.AdjustmentExplainResult]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/settlement/lines/{id}/adjustments [get]
func (h *SettlementHandler) ExplainAdjustments(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	result, err := h.settlementService.ExplainAdjustments(c.Request.Context(), lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CheckConsistency godoc
//
//	@ID				checkSettlementConsistency
//	@Summary		Check a line against the ledger
//	@Description	Compares the locally computed cash total against the source-of-truth ledger's cash due for the line.
//	@Tags			settlement
//	@Produce		json
//	@Param			id		path		string	true	"Line ID"	format(uuid)
//	@Param			mode	query		string	false	"Decomposition mode"	Enums(RAW, AR_ALIGNED)	default(AR_ALIGNED)
//	@Success		200		{object}	APIResponse[settlementapp.ConsistencyResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/settlement/lines/{id}/consistency [get]
func (h *SettlementHandler) CheckConsistency(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	mode := parseMode(c, settlement.ModeARAligned)

	result, err := h.settlementService.CheckConsistency(c.Request.Context(), lineID, mode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all settlement routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lines := rg.Group("/settlement/lines")
	{
		lines.GET("/:id/decomposition", h.Decompose)
		lines.GET("/:id/adjustments", h.ExplainAdjustments)
		lines.GET("/:id/consistency", h.CheckConsistency)
	}
}
