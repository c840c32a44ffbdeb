package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkarpovich/classbooker/internal/model"
)

// LedgerRepository управляет кредитным леджером.
// Записи только добавляются, баланс равен сумме amount.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const appendEntryQuery = `
	INSERT INTO credit_ledger (user_id, amount, type, related_booking_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
`

// Append добавляет запись в леджер
func (r *LedgerRepository) Append(ctx context.Context, entry *model.LedgerEntry) error {
	err := r.pool.QueryRow(
		ctx, appendEntryQuery,
		entry.UserID,
		entry.Amount,
		entry.Type,
		entry.RelatedBookingID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}

// AppendTx добавляет запись в леджер внутри транзакции.
// Списание при бронировании пишется только так: либо коммитятся и
// бронирование, и списание, либо ничего.
func (r *LedgerRepository) AppendTx(ctx context.Context, tx pgx.Tx, entry *model.LedgerEntry) error {
	err := tx.QueryRow(
		ctx, appendEntryQuery,
		entry.UserID,
		entry.Amount,
		entry.Type,
		entry.RelatedBookingID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}

// Balance возвращает текущий баланс пользователя
func (r *LedgerRepository) Balance(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM credit_ledger WHERE user_id = $1`

	var balance int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// BalanceTx возвращает баланс внутри транзакции
func (r *LedgerRepository) BalanceTx(ctx context.Context, tx pgx.Tx, userID int64) (int, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM credit_ledger WHERE user_id = $1`

	var balance int
	err := tx.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetByUserID получает историю операций пользователя
func (r *LedgerRepository) GetByUserID(ctx context.Context, userID int64) ([]*model.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, type, related_booking_id, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get ledger entries by user: %w", err)
	}
	defer rows.Close()

	var entries []*model.LedgerEntry
	for rows.Next() {
		var entry model.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.Type,
			&entry.RelatedBookingID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// GetSpendByBookingID получает запись списания по бронированию
func (r *LedgerRepository) GetSpendByBookingID(ctx context.Context, bookingID int64) (*model.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, type, related_booking_id, created_at
		FROM credit_ledger
		WHERE related_booking_id = $1 AND type = 'spend'
		LIMIT 1
	`

	var entry model.LedgerEntry
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.Type,
		&entry.RelatedBookingID,
		&entry.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get spend entry by booking: %w", err)
	}

	return &entry, nil
}
