// Package machine models the ATM's single machine-state record: cash on hand,
// receipt paper, ink and firmware version.
package machine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientMachineCash = errors.New("machine does not hold enough cash")
	ErrOutOfPaper              = errors.New("machine is out of receipt paper")
	ErrOutOfInk                = errors.New("machine is out of ink")
	ErrStateMissing            = errors.New("machine state record is missing")
)

// Supply identifies a printer consumable
type Supply string

const (
	SupplyPaper Supply = "PAPER"
	SupplyInk   Supply = "INK"
	// SupplyUnavailable is reported when the supply counters could not be updated at all
	SupplyUnavailable Supply = "SUPPLIES_UNAVAILABLE"
)

// SupplyWarning is a non-fatal notice attached to a printed receipt
type SupplyWarning struct {
	Supply  Supply `json:"supply"`
	Message string `json:"message"`
}

// State is a snapshot of the machine-state singleton
type State struct {
	Cash            decimal.Decimal `json:"cash"`
	Paper           int             `json:"paper"`
	Ink             int             `json:"ink"`
	FirmwareVersion string          `json:"firmware_version"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CheckWithdrawal validates cash, then paper, then ink for a withdrawal of amount
func (s *State) CheckWithdrawal(amount decimal.Decimal) error {
	if err := s.CheckCash(amount); err != nil {
		return err
	}
	if s.Paper < 1 {
		return ErrOutOfPaper
	}
	if s.Ink < 1 {
		return ErrOutOfInk
	}
	return nil
}

// CheckCash returns ErrInsufficientMachineCash when amount exceeds cash on hand
func (s *State) CheckCash(amount decimal.Decimal) error {
	if amount.GreaterThan(s.Cash) {
		return ErrInsufficientMachineCash
	}
	return nil
}

// SupplyUsage is how much paper and ink one receipt will take, plus warnings for
// whatever is exhausted.
type SupplyUsage struct {
	Paper    int
	Ink      int
	Warnings []SupplyWarning
}

// PlanReceipt decides supply consumption for one receipt. Exhaustion never blocks printing.
func (s *State) PlanReceipt() SupplyUsage {
	var usage SupplyUsage
	if s.Paper >= 1 {
		usage.Paper = 1
	} else {
		usage.Warnings = append(usage.Warnings, SupplyWarning{Supply: SupplyPaper, Message: "Warning: Out of paper!"})
	}
	if s.Ink >= 1 {
		usage.Ink = 1
	} else {
		usage.Warnings = append(usage.Warnings, SupplyWarning{Supply: SupplyInk, Message: "Warning: Out of ink!"})
	}
	return usage
}
