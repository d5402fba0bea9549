package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/freightdesk/internal/party"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const customerColumns = `id, name, email, phone, address, tax_id, created_at`

func scanCustomer(s scanner) (*party.Customer, error) {
	var c party.Customer

	var email, phone, address, taxID sql.NullString

	if err := s.Scan(&c.ID, &c.Name, &email, &phone, &address, &taxID, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.TaxID = taxID.String

	return &c, nil
}

const contractorColumns = `id, name, email, phone, balance, created_at`

func scanContractor(s scanner) (*party.Contractor, error) {
	var c party.Contractor

	var email, phone sql.NullString

	if err := s.Scan(&c.ID, &c.Name, &email, &phone, &c.Balance, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Email = email.String
	c.Phone = phone.String

	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *party.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, address, tax_id, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.Email, c.Phone, c.Address, c.TaxID).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*party.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, party.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]*party.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*party.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	return customers, rows.Err()
}

func (s *Store) CreateContractor(ctx context.Context, c *party.Contractor) error {
	query := `
		INSERT INTO contractors (name, email, phone, balance, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), 0, NOW())
		RETURNING id, balance, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.Email, c.Phone).
		Scan(&c.ID, &c.Balance, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating contractor: %w", err)
	}

	return nil
}

func (s *Store) GetContractor(ctx context.Context, id uuid.UUID) (*party.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE id = $1`

	c, err := scanContractor(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, party.ErrNotFound
		}

		return nil, fmt.Errorf("getting contractor: %w", err)
	}

	return c, nil
}

func (s *Store) ListContractors(ctx context.Context) ([]*party.Contractor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contractorColumns+` FROM contractors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing contractors: %w", err)
	}
	defer rows.Close()

	var contractors []*party.Contractor

	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contractor: %w", err)
		}

		contractors = append(contractors, c)
	}

	return contractors, rows.Err()
}
