package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engineBack/internal/models"
)

type BudgetRepository struct {
	DB *sql.DB
}

const ledgerColumns = `id, business_profile_id, organization_id, month, monthly_cap, actual_spend, currency, is_approved, approved_by, approved_at, created_at, updated_at`

func scanLedger(scanner interface{ Scan(dest ...any) error }) (models.BudgetLedger, error) {
	var l models.BudgetLedger
	var approvedBy sql.NullString
	var approvedAt, updatedAt sql.NullTime
	err := scanner.Scan(&l.ID, &l.BusinessProfileID, &l.OrganizationID, &l.Month, &l.MonthlyCap, &l.ActualSpend,
		&l.Currency, &l.IsApproved, &approvedBy, &approvedAt, &l.CreatedAt, &updatedAt)
	if err != nil {
		return models.BudgetLedger{}, err
	}
	if approvedBy.Valid {
		s := approvedBy.String
		l.ApprovedBy = &s
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		l.ApprovedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		l.UpdatedAt = &t
	}
	return l, nil
}

// GetLedgerByID returns a ledger by primary key, nil when absent.
func (r *BudgetRepository) GetLedgerByID(ctx context.Context, ledgerID string) (*models.BudgetLedger, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM budget_ledger WHERE id = $1`, ledgerID)
	l, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget ledger: %w", err)
	}
	return &l, nil
}

// GetLedgerByMonth returns the ledger for (profile, month key), nil when absent.
func (r *BudgetRepository) GetLedgerByMonth(ctx context.Context, profileID, monthKey string) (*models.BudgetLedger, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM budget_ledger WHERE business_profile_id = $1 AND month = $2`,
		profileID, monthKey)
	l, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget ledger: %w", err)
	}
	return &l, nil
}

// ListLedgersByMonths returns the ledgers matching any of the month keys,
// newest month first. Months without a ledger are simply absent.
func (r *BudgetRepository) ListLedgersByMonths(ctx context.Context, profileID string, monthKeys []string) ([]models.BudgetLedger, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM budget_ledger WHERE business_profile_id = $1 AND month = ANY($2) ORDER BY month DESC`,
		profileID, monthKeys)
	if err != nil {
		return nil, fmt.Errorf("list budget ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []models.BudgetLedger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

// CreateLedger inserts a new monthly ledger. The unique index on
// (business_profile_id, month) enforces the one-ledger-per-month invariant.
func (r *BudgetRepository) CreateLedger(ctx context.Context, ledger *models.BudgetLedger) error {
	ledger.ID = uuid.NewString()
	ledger.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO budget_ledger (id, business_profile_id, organization_id, month, monthly_cap, actual_spend, currency, is_approved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ledger.ID, ledger.BusinessProfileID, ledger.OrganizationID, ledger.Month,
		ledger.MonthlyCap, ledger.ActualSpend, ledger.Currency, ledger.IsApproved, ledger.CreatedAt)
	if err != nil {
		return fmt.Errorf("create budget ledger: %w", err)
	}
	return nil
}

// InsertTransaction appends a transaction and increments the ledger's
// actual_spend in the same database transaction. The increment is done in SQL
// so concurrent records never lose spend.
func (r *BudgetRepository) InsertTransaction(ctx context.Context, txn *models.BudgetTransaction) error {
	metadata, err := json.Marshal(txn.Metadata)
	if err != nil {
		return fmt.Errorf("encode transaction metadata: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	txn.ID = uuid.NewString()
	txn.CreatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO budget_transactions (id, budget_ledger_id, amount, description, category, provider, metadata, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		txn.ID, txn.BudgetLedgerID, txn.Amount, txn.Description, txn.Category, txn.Provider, metadata, txn.CreatedBy, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("record budget transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE budget_ledger SET actual_spend = actual_spend + $1, updated_at = now() WHERE id = $2`,
		txn.Amount, txn.BudgetLedgerID)
	if err != nil {
		return fmt.Errorf("increment ledger spend: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrLedgerNotFound
	}

	return tx.Commit()
}

// ListTransactions returns a ledger's transactions, oldest first.
func (r *BudgetRepository) ListTransactions(ctx context.Context, ledgerID string) ([]models.BudgetTransaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, budget_ledger_id, amount, description, category, provider, metadata, created_by, created_at
		 FROM budget_transactions WHERE budget_ledger_id = $1 ORDER BY created_at ASC`,
		ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list budget transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.BudgetTransaction
	for rows.Next() {
		var t models.BudgetTransaction
		var category, provider sql.NullString
		var metadata []byte
		if err := rows.Scan(&t.ID, &t.BudgetLedgerID, &t.Amount, &t.Description, &category, &provider, &metadata, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		if category.Valid {
			s := category.String
			t.Category = &s
		}
		if provider.Valid {
			s := provider.String
			t.Provider = &s
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				return nil, fmt.Errorf("decode transaction metadata: %w", err)
			}
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// SumTransactions returns the recorded transaction total for a ledger.
func (r *BudgetRepository) SumTransactions(ctx context.Context, ledgerID string) (float64, error) {
	var sum float64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM budget_transactions WHERE budget_ledger_id = $1`,
		ledgerID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum budget transactions: %w", err)
	}
	return sum, nil
}

// ListLedgerIDsForMonth returns every ledger id for a month key, used by the
// reconciliation loop.
func (r *BudgetRepository) ListLedgerIDsForMonth(ctx context.Context, monthKey string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM budget_ledger WHERE month = $1`, monthKey)
	if err != nil {
		return nil, fmt.Errorf("list ledgers for month: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetActualSpend overwrites a ledger's cumulative spend. Only the reconciler
// uses this; normal spend mutation goes through InsertTransaction.
func (r *BudgetRepository) SetActualSpend(ctx context.Context, ledgerID string, spend float64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE budget_ledger SET actual_spend = $1, updated_at = now() WHERE id = $2`,
		spend, ledgerID)
	if err != nil {
		return fmt.Errorf("set ledger spend: %w", err)
	}
	return nil
}
