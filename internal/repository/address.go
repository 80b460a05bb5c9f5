package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/storefront/storefront-go/internal/model"
)

// AddressRepository handles user address persistence operations.
type AddressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new AddressRepository.
func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// Create appends a new address row for the address's user. Existing rows are
// never touched, so repeated profile updates accumulate an address history.
func (r *AddressRepository) Create(ctx context.Context, addr *model.Address) error {
	query := `INSERT INTO user_addresses (user_id, street, city, state, zip, country) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		addr.UserID,
		addr.Street,
		addr.City,
		addr.State,
		addr.Zip,
		addr.Country,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	addr.ID = id
	addr.CreatedAt = time.Now().UTC()
	return nil
}

// ListByUser retrieves all addresses for a user, oldest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	query := `SELECT id, user_id, street, city, state, zip, country, created_at
		FROM user_addresses WHERE user_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.Zip, &a.Country, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}

	return addresses, rows.Err()
}
