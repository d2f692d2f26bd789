package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/crmkit/crm-gateway/internal/model"
)

// CustomerUpdate carries a partial update; nil fields are left untouched.
type CustomerUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
}

type CustomersRepository interface {
	Create(ctx context.Context, c model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Customer, error)
	List(ctx context.Context, userID int64, f model.CustomerFilter) ([]model.Customer, int, error)
	Update(ctx context.Context, userID, id int64, upd CustomerUpdate) (*model.Customer, error)
	Delete(ctx context.Context, userID, id int64) error
}

type CustomersRepositoryImpl struct {
	db *sqlx.DB
}

func NewCustomersRepository(db *sqlx.DB) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{db: db}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

func (r *CustomersRepositoryImpl) Create(ctx context.Context, c model.Customer) (*model.Customer, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (user_id, name, email, phone, company, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
	`, c.UserID, c.Name, c.Email, c.Phone, c.Company)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, c.UserID, id)
}

// GetByID returns (nil, nil) when no row with that id is owned by userID.
func (r *CustomersRepositoryImpl) GetByID(ctx context.Context, userID, id int64) (*model.Customer, error) {
	var c model.Customer
	err := r.db.GetContext(ctx, &c, `
		SELECT id, user_id, name, email, phone, company, created_at, updated_at
		  FROM customers
		 WHERE id = ? AND user_id = ? LIMIT 1
	`, id, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns one page of owner-scoped customers plus the pre-pagination
// match count. Search matches name/email/phone (OR); company is a separate
// AND filter. Both are case-insensitive substring matches.
func (r *CustomersRepositoryImpl) List(ctx context.Context, userID int64, f model.CustomerFilter) ([]model.Customer, int, error) {
	where := ` WHERE user_id = ?`
	args := []any{userID}

	if f.Search != "" {
		p := "%" + strings.ToLower(f.Search) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)`
		args = append(args, p, p, p)
	}
	if f.Company != "" {
		where += ` AND LOWER(company) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.Company)+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM customers`+where, args...); err != nil {
		return nil, 0, err
	}

	q := `
		SELECT id, user_id, name, email, phone, company, created_at, updated_at
		  FROM customers` + where + `
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows := []model.Customer{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update applies the non-nil fields and refreshes updated_at, then re-reads
// the row. Returns (nil, nil) when no owned row matched.
func (r *CustomersRepositoryImpl) Update(ctx context.Context, userID, id int64, upd CustomerUpdate) (*model.Customer, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}

	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		set = append(set, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Phone != nil {
		set = append(set, "phone = ?")
		args = append(args, *upd.Phone)
	}
	if upd.Company != nil {
		set = append(set, "company = ?")
		args = append(args, *upd.Company)
	}

	q := `UPDATE customers SET ` + strings.Join(set, ", ") + ` WHERE id = ? AND user_id = ?`
	args = append(args, id, userID)

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}

	// RowsAffected is 0 both for "no row" and "no change", so re-read instead.
	return r.GetByID(ctx, userID, id)
}

// Delete removes the owned row if present. Deleting an absent id is not an
// error; callers do not distinguish the two outcomes.
func (r *CustomersRepositoryImpl) Delete(ctx context.Context, userID, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM customers WHERE id = ? AND user_id = ?
	`, id, userID)
	return err
}
