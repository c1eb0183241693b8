package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
)

// CustomerRepository implements store.CustomerRepository.
type CustomerRepository struct {
	db *Pool
}

func NewCustomerRepository(db *Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	id, first_name, last_name, email, phone, address, date_of_birth, bvn,
	credit_score, email_opt_in, date_created, is_active, is_deleted,
	deleted_at, deleted_by
`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var customerID uuid.UUID
	err := row.Scan(
		&customerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address,
		&c.DateOfBirth, &c.BVN, &c.CreditScore, &c.EmailOptIn, &c.CreatedAt,
		&c.IsActive, &c.IsDeleted, &c.DeletedAt, &c.DeletedBy,
	)
	if err != nil {
		return nil, err
	}
	c.ID = ids.CustomerID(customerID)
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id ids.CustomerID) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 AND is_deleted = false`, uuid.UUID(id))
	c, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.NotFound("customer not found")
		}
		return nil, domainerr.Internal("failed to load customer", err)
	}
	return c, nil
}

func (r *CustomerRepository) ExistsByID(ctx context.Context, id ids.CustomerID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1 AND is_deleted = false)`, uuid.UUID(id)).Scan(&exists)
	if err != nil {
		return false, domainerr.Internal("failed to check customer existence", err)
	}
	return exists, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1) AND is_deleted = false`, strings.TrimSpace(email))
	c, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.NotFound("customer not found")
		}
		return nil, domainerr.Internal("failed to load customer by email", err)
	}
	return c, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE is_deleted = false ORDER BY date_created ASC`)
	if err != nil {
		return nil, domainerr.Internal("failed to list customers", err)
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, domainerr.Internal("failed to scan customer", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) Add(ctx context.Context, customer *domain.Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (
			id, first_name, last_name, email, phone, address, date_of_birth, bvn,
			credit_score, email_opt_in, date_created, is_active, is_deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		uuid.UUID(customer.ID), customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.DateOfBirth, customer.BVN,
		customer.CreditScore, customer.EmailOptIn, customer.CreatedAt, customer.IsActive, customer.IsDeleted,
	)
	if err != nil {
		return domainerr.Internal("failed to insert customer", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers SET
			first_name=$2, last_name=$3, email=$4, phone=$5, address=$6,
			date_of_birth=$7, bvn=$8, credit_score=$9, email_opt_in=$10,
			is_active=$11, is_deleted=$12, deleted_at=$13, deleted_by=$14
		WHERE id = $1
	`,
		uuid.UUID(customer.ID), customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.DateOfBirth, customer.BVN,
		customer.CreditScore, customer.EmailOptIn, customer.IsActive, customer.IsDeleted,
		customer.DeletedAt, customer.DeletedBy,
	)
	if err != nil {
		return domainerr.Internal("failed to update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return domainerr.NotFound("customer not found")
	}
	return nil
}
