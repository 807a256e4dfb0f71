package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/atm-ledger/internal/domain/shared"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/components"
	processor "github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
)

// TechnicianHandler serves the technician console. Routes are guarded by middleware.TechnicianAuth.
type TechnicianHandler struct {
	technician service.TechnicianService
	logger     *slog.Logger
}

func NewTechnicianHandler(logger *slog.Logger, technician service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{
		technician: technician,
		logger:     logger,
	}
}

// Status returns a snapshot of cash, paper, ink and firmware
func (h *TechnicianHandler) Status(c *gin.Context) {
	state, err := h.technician.ViewMachineStatus(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to read machine status", "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, mapStateToResponse(state))
}

func (h *TechnicianHandler) RefillPaper(c *gin.Context) {
	h.mutate(c, func(req TechnicianActionRequest) (*components.CapabilityResult, error) {
		return h.technician.RefillPaper(c.Request.Context(), req.Units)
	})
}

func (h *TechnicianHandler) RefillInk(c *gin.Context) {
	h.mutate(c, func(req TechnicianActionRequest) (*components.CapabilityResult, error) {
		return h.technician.RefillInk(c.Request.Context(), req.Units)
	})
}

func (h *TechnicianHandler) AddCash(c *gin.Context) {
	h.mutate(c, func(req TechnicianActionRequest) (*components.CapabilityResult, error) {
		return h.technician.AddCash(c.Request.Context(), req.Amount)
	})
}

func (h *TechnicianHandler) CollectCash(c *gin.Context) {
	h.mutate(c, func(TechnicianActionRequest) (*components.CapabilityResult, error) {
		return h.technician.CollectAllCash(c.Request.Context())
	})
}

func (h *TechnicianHandler) UpdateFirmware(c *gin.Context) {
	h.mutate(c, func(req TechnicianActionRequest) (*components.CapabilityResult, error) {
		return h.technician.UpdateFirmware(c.Request.Context(), req.Version)
	})
}

func (h *TechnicianHandler) mutate(c *gin.Context, action func(TechnicianActionRequest) (*components.CapabilityResult, error)) {
	var req TechnicianActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := action(req)
	if errors.Is(err, processor.ErrOperationUnsupported) {
		message := reasonMessages[shared.FailureReasonUnsupported]
		if result != nil {
			message = result.Message
		}
		RespondNotImplemented(c, string(shared.FailureReasonUnsupported), result, message)
		return
	}
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Technician action failed", "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, result)
}
