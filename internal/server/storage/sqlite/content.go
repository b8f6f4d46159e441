package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// GetTerms returns current terms
func (s *Storage) GetTerms(ctx context.Context) (*models.TermConditions, error) {
	t := &models.TermConditions{}
	err := s.db.QueryRowContext(ctx,
		`SELECT terms, use_and_license, updated_at FROM term_conditions WHERE id = 1`,
	).Scan(&t.Terms, &t.UseAndLicense, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get terms: %w", err)
	}

	return t, nil
}

// SaveTerms creates or replaces terms
func (s *Storage) SaveTerms(ctx context.Context, t *models.TermConditions) error {
	query := `
		INSERT INTO term_conditions (id, terms, use_and_license, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			terms = excluded.terms,
			use_and_license = excluded.use_and_license,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, t.Terms, t.UseAndLicense, t.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save terms: %w", err)
	}

	return nil
}

// GetPaymentMethod returns the payment method of a user
func (s *Storage) GetPaymentMethod(ctx context.Context, userID string) (*models.PaymentMethod, error) {
	m := &models.PaymentMethod{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT account_number, account_name, bank_name, updated_at FROM payment_methods WHERE user_id = ?`, userID,
	).Scan(&m.AccountNumber, &m.AccountName, &m.BankName, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}

	return m, nil
}

// SavePaymentMethod creates or replaces the payment method of a user
func (s *Storage) SavePaymentMethod(ctx context.Context, m *models.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (user_id, account_number, account_name, bank_name, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			account_number = excluded.account_number,
			account_name = excluded.account_name,
			bank_name = excluded.bank_name,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, m.UserID, m.AccountNumber, m.AccountName, m.BankName, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save payment method: %w", err)
	}

	return nil
}
