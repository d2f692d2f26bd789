package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/crmkit/crm-gateway/internal/model"
)

type InteractionsRepository interface {
	Create(ctx context.Context, in model.Interaction) (*model.Interaction, error)
	ListByCustomer(ctx context.Context, userID, customerID int64) ([]model.Interaction, error)
}

type InteractionsRepositoryImpl struct {
	db *sqlx.DB
}

func NewInteractionsRepository(db *sqlx.DB) *InteractionsRepositoryImpl {
	return &InteractionsRepositoryImpl{db: db}
}

var _ InteractionsRepository = (*InteractionsRepositoryImpl)(nil)

func (r *InteractionsRepositoryImpl) Create(ctx context.Context, in model.Interaction) (*model.Interaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO interactions (customer_id, user_id, type, notes, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, in.CustomerID, in.UserID, in.Type, in.Notes)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// The row was just inserted, so the re-read must find it; any failure
	// here (including ErrNoRows) is a store error.
	var out model.Interaction
	err = r.db.GetContext(ctx, &out, `
		SELECT id, customer_id, user_id, type, notes, created_at
		  FROM interactions
		 WHERE id = ? LIMIT 1
	`, id)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByCustomer returns the owner's interactions for one customer, newest
// first. An empty slice, not nil, when none match.
func (r *InteractionsRepositoryImpl) ListByCustomer(ctx context.Context, userID, customerID int64) ([]model.Interaction, error) {
	rows := []model.Interaction{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, customer_id, user_id, type, notes, created_at
		  FROM interactions
		 WHERE customer_id = ? AND user_id = ?
		 ORDER BY created_at DESC
	`, customerID, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
