package components

import (
	"log/slog"

	"github.com/atm-ledger/internal/config"
	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/outbox"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/atm-ledger/internal/transaction_processor/service"
)

// Repositories bundles the ledger store repositories the ATM core runs on
type Repositories struct {
	Accounts     account.Repository
	Machine      machine.Repository
	Transactions transaction.Repository
	Outbox       outbox.Repository
}

// ATM is the assembled transactional core
type ATM struct {
	Processor     service.ProcessingService
	Authenticator *Authenticator
	Receipts      *ReceiptPrinter
	Technician    *TechnicianConsole
	Resources     service.ResourceLedger

	pool *service.WorkerPoolProcessingService
}

// NewATM wires every component. The processor runs on a worker pool of
// cfg.WorkerPool.Size; if the pool cannot be created calls run inline.
func NewATM(db persistence.TxRunner, repos Repositories, logger *slog.Logger, cfg *config.Config) *ATM {
	resources := NewResourceLedger(repos.Machine, logger.With("component", "resource_ledger"))
	outboxManager := NewOutboxManager(repos.Outbox, logger)

	baseService := service.NewProcessingService(
		db,
		NewTransactionValidator(),
		NewAccountManager(repos.Accounts, logger),
		resources,
		NewRecordKeeper(repos.Transactions, logger),
		outboxManager,
		logger.With("component", "processor"),
	)

	atm := &ATM{
		Processor:     baseService,
		Authenticator: NewAuthenticator(repos.Accounts, logger.With("component", "authenticator")),
		Receipts:      NewReceiptPrinter(db, resources, outboxManager, cfg.ATM.ReceiptTimeFormat, logger.With("component", "receipt_printer")),
		Technician:    NewTechnicianConsole(resources, cfg.ATM.TechnicianCode, logger.With("component", "technician")),
		Resources:     resources,
	}

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return atm
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	atm.Processor = workerPoolService
	atm.pool = workerPoolService
	return atm
}

// Shutdown releases the worker pool, if any
func (a *ATM) Shutdown() {
	if a.pool != nil {
		a.pool.Shutdown()
	}
}
