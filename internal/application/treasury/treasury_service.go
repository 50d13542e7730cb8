package treasury

import (
	"context"
	"fmt"
	"time"

	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/aurum/backend/internal/domain/treasury"
	"github.com/aurum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference type constants for transaction source documents
const (
	ReferenceTypeSupplier            = "SUPPLIER"
	ReferenceTypeCashDrawer          = "CASH_DRAWER"
	ReferenceTypeTreasuryTransaction = "TREASURY_TRANSACTION"
)

// Service owns the branch cash ledger and supplier balances. Every
// balance change writes a transaction row carrying the balance before
// and after, in the same database transaction as the balance itself.
type Service struct {
	scope                TransactionScope
	accountRepo          treasury.AccountRepository
	transactionRepo      treasury.TransactionRepository
	supplierRepo         treasury.SupplierRepository
	supplierTxRepo       treasury.SupplierTransactionRepository
	ownership            *ownershipapp.Service
	allowNegativeBalance bool
}

// NewService creates a new treasury Service. allowNegativeBalance is
// the treasury.allow_negative_balance configuration switch; it applies
// to adjustments only, never to supplier payments.
func NewService(
	scope TransactionScope,
	accountRepo treasury.AccountRepository,
	transactionRepo treasury.TransactionRepository,
	supplierRepo treasury.SupplierRepository,
	supplierTxRepo treasury.SupplierTransactionRepository,
	ownershipService *ownershipapp.Service,
	allowNegativeBalance bool,
) *Service {
	return &Service{
		scope:                scope,
		accountRepo:          accountRepo,
		transactionRepo:      transactionRepo,
		supplierRepo:         supplierRepo,
		supplierTxRepo:       supplierTxRepo,
		ownership:            ownershipService,
		allowNegativeBalance: allowNegativeBalance,
	}
}

// GetOrCreateAccount returns the branch's treasury account, creating
// an empty one on first use
func (s *Service) GetOrCreateAccount(ctx context.Context, branchID uuid.UUID) (*treasury.TreasuryAccount, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Branch ID cannot be empty")
	}
	account, err := s.accountRepo.GetOrCreate(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create account: %w", err)
	}
	return account, nil
}

// AdjustRequest represents a manual balance adjustment
type AdjustRequest struct {
	BranchID  uuid.UUID
	Amount    valueobject.Money
	Direction treasury.Direction
	Reason    string
	ActorID   *uuid.UUID
}

// Adjust applies a manual credit or debit to the branch account. A
// debit below zero is rejected unless negative balances are allowed by
// configuration.
func (s *Service) Adjust(ctx context.Context, req AdjustRequest) (*treasury.TreasuryTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "adjust")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrAmount, req.Amount.StringFixed(2),
	)

	if !req.Direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown direction")
	}

	var tx *treasury.TreasuryTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.AccountRepo().GetOrCreate(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get or create account: %w", err)
		}

		balanceBefore := account.Balance
		if req.Direction == treasury.DirectionCredit {
			err = account.Credit(req.Amount)
		} else {
			err = account.Debit(req.Amount, s.allowNegativeBalance)
		}
		if err != nil {
			return err
		}
		if err := repos.AccountRepo().SaveWithLock(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}

		tx = treasury.NewTreasuryTransaction(account, req.Amount.Amount(), req.Direction,
			treasury.TransactionTypeAdjustment, balanceBefore).
			WithNotes(req.Reason)
		if req.ActorID != nil {
			tx.WithActor(*req.ActorID)
		}
		return repos.TreasuryTransactionRepo().Create(ctx, tx)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return tx, nil
}

// FeedRequest represents cash moved from a drawer into the treasury
type FeedRequest struct {
	BranchID   uuid.UUID
	Amount     valueobject.Money
	OccurredAt time.Time
	ActorID    *uuid.UUID
	Notes      string
}

// FeedFromCashDrawer credits the branch account with cash collected
// from a drawer. Feeds only ever credit; the transaction is dated with
// the physical handover time.
func (s *Service) FeedFromCashDrawer(ctx context.Context, req FeedRequest) (*treasury.TreasuryTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "feed_from_cash_drawer")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrAmount, req.Amount.StringFixed(2),
	)

	var tx *treasury.TreasuryTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.AccountRepo().GetOrCreate(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get or create account: %w", err)
		}

		balanceBefore := account.Balance
		if err := account.Credit(req.Amount); err != nil {
			return err
		}
		if err := repos.AccountRepo().SaveWithLock(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}

		tx = treasury.NewTreasuryTransaction(account, req.Amount.Amount(), treasury.DirectionCredit,
			treasury.TransactionTypeFeedFromDrawer, balanceBefore).
			WithReference(ReferenceTypeCashDrawer, req.BranchID.String()).
			WithNotes(req.Notes)
		if !req.OccurredAt.IsZero() {
			tx.WithOccurredAt(req.OccurredAt)
		}
		if req.ActorID != nil {
			tx.WithActor(*req.ActorID)
		}
		return repos.TreasuryTransactionRepo().Create(ctx, tx)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return tx, nil
}

// PaySupplierRequest represents a cash payment to a supplier
type PaySupplierRequest struct {
	BranchID   uuid.UUID
	SupplierID uuid.UUID
	Amount     valueobject.Money
	ActorID    *uuid.UUID
	Notes      string
}

// PaySupplierResult carries both sides of the payment for receipt
// generation
type PaySupplierResult struct {
	TreasuryTransaction *treasury.TreasuryTransaction
	SupplierTransaction *treasury.SupplierTransaction
}

// PaySupplier pays down a supplier's outstanding balance from the
// branch treasury. The account debit, the supplier decrement, both
// transaction rows, and the settlement of the supplier's ownership
// records commit atomically, or not at all. A payment above the
// treasury balance or above the supplier's outstanding balance is
// rejected before anything is written.
func (s *Service) PaySupplier(ctx context.Context, req PaySupplierRequest) (*PaySupplierResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "pay_supplier")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrSupplierID, req.SupplierID.String(),
		telemetry.SpanAttrAmount, req.Amount.StringFixed(2),
	)

	var result *PaySupplierResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.AccountRepo().FindByBranch(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if account == nil {
			return shared.NewDomainError("NOT_FOUND", "Branch has no treasury account")
		}
		supplier, err := repos.SupplierRepo().FindByID(ctx, req.SupplierID)
		if err != nil {
			return fmt.Errorf("failed to load supplier: %w", err)
		}
		if supplier == nil {
			return shared.NewDomainError("NOT_FOUND", "Supplier not found")
		}

		accountBalanceBefore := account.Balance
		if err := account.Debit(req.Amount, false); err != nil {
			return err
		}
		supplierBalanceBefore := supplier.CurrentBalance
		if err := supplier.ApplyPayment(req.Amount); err != nil {
			return err
		}

		if err := repos.AccountRepo().SaveWithLock(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		if err := repos.SupplierRepo().SaveWithLock(ctx, supplier); err != nil {
			return fmt.Errorf("failed to save supplier: %w", err)
		}

		treasuryTx := treasury.NewTreasuryTransaction(account, req.Amount.Amount(), treasury.DirectionDebit,
			treasury.TransactionTypeSupplierPayment, accountBalanceBefore).
			WithReference(ReferenceTypeSupplier, supplier.ID.String()).
			WithNotes(req.Notes)
		if req.ActorID != nil {
			treasuryTx.WithActor(*req.ActorID)
		}
		if err := repos.TreasuryTransactionRepo().Create(ctx, treasuryTx); err != nil {
			return fmt.Errorf("failed to record treasury transaction: %w", err)
		}

		supplierTx := treasury.NewSupplierTransaction(supplier, treasury.SupplierTxPayment,
			req.Amount.Amount(), supplierBalanceBefore).
			WithReference(ReferenceTypeTreasuryTransaction, treasuryTx.ID.String()).
			WithNotes(req.Notes)
		if req.ActorID != nil {
			supplierTx.WithActor(*req.ActorID)
		}
		if err := repos.SupplierTransactionRepo().Create(ctx, supplierTx); err != nil {
			return fmt.Errorf("failed to record supplier transaction: %w", err)
		}

		if err := s.settleOwnership(ctx, repos, supplier.ID, req.Amount.Amount(), treasuryTx.ID, req.ActorID); err != nil {
			return err
		}

		result = &PaySupplierResult{TreasuryTransaction: treasuryTx, SupplierTransaction: supplierTx}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// settleOwnership spreads a supplier payment across the supplier's
// outstanding ownership records, oldest first
func (s *Service) settleOwnership(ctx context.Context, repos TransactionalRepositories, supplierID uuid.UUID, amount decimal.Decimal, treasuryTxID uuid.UUID, actorID *uuid.UUID) error {
	records, err := repos.OwnershipRecordRepo().FindOutstandingBySupplier(ctx, supplierID)
	if err != nil {
		return fmt.Errorf("failed to load outstanding records: %w", err)
	}

	remaining := amount
	for _, record := range records {
		if !remaining.IsPositive() {
			break
		}
		portion := remaining
		if record.OutstandingAmount.LessThan(portion) {
			portion = record.OutstandingAmount
		}
		if _, err := s.ownership.ApplyPaymentWithin(ctx, repos, ownershipapp.ApplyPaymentRequest{
			RecordID:      record.ID,
			Amount:        valueobject.NewMoneyEGP(portion),
			ReferenceType: ownershipapp.ReferenceTypeSupplierPayment,
			ReferenceID:   treasuryTxID.String(),
			ActorID:       actorID,
		}); err != nil {
			return err
		}
		remaining = remaining.Sub(portion)
	}
	return nil
}

// GetTransactions lists an account's transactions, most recent first
func (s *Service) GetTransactions(ctx context.Context, accountID uuid.UUID, filter treasury.TransactionFilter) (*shared.Paginated[treasury.TreasuryTransaction], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}
	transactions, err := s.transactionRepo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.transactionRepo.CountByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	page := shared.NewPaginated(transactions, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CreateSupplier registers a supplier with a zero outstanding balance
func (s *Service) CreateSupplier(ctx context.Context, name, phone string) (*treasury.Supplier, error) {
	supplier, err := treasury.NewSupplier(name)
	if err != nil {
		return nil, err
	}
	supplier.Phone = phone
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}
	return supplier, nil
}

// GetSupplier loads a supplier by ID
func (s *Service) GetSupplier(ctx context.Context, supplierID uuid.UUID) (*treasury.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return supplier, nil
}

// ListSuppliers lists suppliers, searchable by name or phone
func (s *Service) ListSuppliers(ctx context.Context, filter shared.Filter) ([]treasury.Supplier, error) {
	return s.supplierRepo.FindAll(ctx, filter)
}

// GetSupplierTransactions lists a supplier's transactions, most recent first
func (s *Service) GetSupplierTransactions(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]treasury.SupplierTransaction, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return s.supplierTxRepo.FindBySupplier(ctx, supplierID, filter)
}

// RecordInvoiceWithin grows a supplier's outstanding balance inside an
// existing unit of work. Receiving uses this when goods arrive on
// credit.
func (s *Service) RecordInvoiceWithin(ctx context.Context, repos TransactionalRepositories, supplierID uuid.UUID, amount valueobject.Money, refType, refID string, actorID *uuid.UUID) (*treasury.SupplierTransaction, error) {
	supplier, err := repos.SupplierRepo().FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}

	balanceBefore := supplier.CurrentBalance
	if err := supplier.AddInvoice(amount); err != nil {
		return nil, err
	}
	if err := repos.SupplierRepo().SaveWithLock(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}

	tx := treasury.NewSupplierTransaction(supplier, treasury.SupplierTxInvoice, amount.Amount(), balanceBefore).
		WithReference(refType, refID)
	if actorID != nil {
		tx.WithActor(*actorID)
	}
	if err := repos.SupplierTransactionRepo().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record supplier transaction: %w", err)
	}
	return tx, nil
}
