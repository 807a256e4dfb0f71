package components

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/shopspring/decimal"
)

const (
	readOnlyMessage = "Technician actions are read-only in V1."
	appliedMessage  = "Technician action applied."
)

// Capability names a technician mutation
type Capability string

const (
	CapabilityRefillPaper    Capability = "REFILL_PAPER"
	CapabilityRefillInk      Capability = "REFILL_INK"
	CapabilityAddCash        Capability = "ADD_CASH"
	CapabilityCollectCash    Capability = "COLLECT_CASH"
	CapabilityUpdateFirmware Capability = "UPDATE_FIRMWARE"
)

var allCapabilities = []Capability{
	CapabilityRefillPaper,
	CapabilityRefillInk,
	CapabilityAddCash,
	CapabilityCollectCash,
	CapabilityUpdateFirmware,
}

// Capabilities reports which technician mutations this machine performs
type Capabilities map[Capability]bool

// CapabilityResult is returned by every technician mutation
type CapabilityResult struct {
	Capability Capability `json:"capability"`
	Supported  bool       `json:"supported"`
	Message    string     `json:"message"`
}

// MachineMutator performs technician mutations on the machine. This version ships none.
type MachineMutator interface {
	RefillPaper(ctx context.Context, units int) error
	RefillInk(ctx context.Context, units int) error
	AddCash(ctx context.Context, amount decimal.Decimal) error
	CollectAllCash(ctx context.Context) error
	UpdateFirmware(ctx context.Context, version string) error
}

// TechnicianConsole exposes machine status and the technician mutations
type TechnicianConsole struct {
	resources    service.ResourceLedger
	code         string
	capabilities Capabilities
	mutator      MachineMutator
	logger       *slog.Logger
}

func NewTechnicianConsole(resources service.ResourceLedger, technicianCode string, logger *slog.Logger) *TechnicianConsole {
	capabilities := make(Capabilities, len(allCapabilities))
	for _, c := range allCapabilities {
		capabilities[c] = false
	}
	return &TechnicianConsole{
		resources:    resources,
		code:         technicianCode,
		capabilities: capabilities,
		logger:       logger,
	}
}

// EnableCapabilities turns on the given mutations, performed by mutator.
// Mutations left out keep answering Unsupported.
func (c *TechnicianConsole) EnableCapabilities(mutator MachineMutator, capabilities ...Capability) {
	c.mutator = mutator
	for _, capability := range capabilities {
		if _, known := c.capabilities[capability]; known {
			c.capabilities[capability] = mutator != nil
		}
	}
}

// Authorize compares code against the configured technician code
func (c *TechnicianConsole) Authorize(code string) bool {
	if c.code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(c.code)) == 1
}

// ViewMachineStatus returns a snapshot without changing anything
func (c *TechnicianConsole) ViewMachineStatus(ctx context.Context) (*machine.State, error) {
	return c.resources.CurrentState(ctx)
}

func (c *TechnicianConsole) RefillPaper(ctx context.Context, units int) (*CapabilityResult, error) {
	return c.perform(ctx, CapabilityRefillPaper, func(m MachineMutator) error {
		return m.RefillPaper(ctx, units)
	}, "units", units)
}

func (c *TechnicianConsole) RefillInk(ctx context.Context, units int) (*CapabilityResult, error) {
	return c.perform(ctx, CapabilityRefillInk, func(m MachineMutator) error {
		return m.RefillInk(ctx, units)
	}, "units", units)
}

func (c *TechnicianConsole) AddCash(ctx context.Context, amount decimal.Decimal) (*CapabilityResult, error) {
	return c.perform(ctx, CapabilityAddCash, func(m MachineMutator) error {
		return m.AddCash(ctx, amount)
	}, "amount", amount.String())
}

func (c *TechnicianConsole) CollectAllCash(ctx context.Context) (*CapabilityResult, error) {
	return c.perform(ctx, CapabilityCollectCash, func(m MachineMutator) error {
		return m.CollectAllCash(ctx)
	})
}

func (c *TechnicianConsole) UpdateFirmware(ctx context.Context, version string) (*CapabilityResult, error) {
	return c.perform(ctx, CapabilityUpdateFirmware, func(m MachineMutator) error {
		return m.UpdateFirmware(ctx, version)
	}, "version", version)
}

// Capabilities returns a copy of the capability set
func (c *TechnicianConsole) Capabilities() Capabilities {
	out := make(Capabilities, len(c.capabilities))
	for k, v := range c.capabilities {
		out[k] = v
	}
	return out
}

// perform runs apply when capability is enabled and answers Unsupported otherwise
func (c *TechnicianConsole) perform(ctx context.Context, capability Capability, apply func(MachineMutator) error, attrs ...any) (*CapabilityResult, error) {
	log := logger.FromContext(ctx, c.logger).With(append([]any{"capability", capability}, attrs...)...)

	if !c.capabilities[capability] || c.mutator == nil {
		log.Info("Technician action refused")
		return &CapabilityResult{Capability: capability, Message: readOnlyMessage}, service.ErrOperationUnsupported
	}

	if err := apply(c.mutator); err != nil {
		log.Error("Technician action failed", "error", err)
		return nil, fmt.Errorf("technician action %s failed: %w", capability, err)
	}
	log.Info("Technician action applied")
	return &CapabilityResult{Capability: capability, Supported: true, Message: appliedMessage}, nil
}
