package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, rawDescription string) (*matching.Mapping, error) {
	query := `
		SELECT id, raw_pattern, customer_id
		FROM description_mappings
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var m matching.Mapping

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&m.ID, &m.RawPattern, &m.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return &m, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern string, customerID uuid.UUID) (*matching.Mapping, error) {
	query := `
		INSERT INTO description_mappings (raw_pattern, customer_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id
	`

	m := matching.Mapping{RawPattern: rawPattern, CustomerID: customerID}

	if err := s.db.QueryRowContext(ctx, query, rawPattern, customerID).Scan(&m.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("creating mapping: %w", database.ErrUnknownReference)
		}

		return nil, fmt.Errorf("creating mapping: %w", err)
	}

	return &m, nil
}
