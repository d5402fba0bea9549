package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyPattern = errors.New("pattern must not be empty")

// Mapping ties a fragment of a bank statement description to the customer
// who pays with it.
type Mapping struct {
	ID         uuid.UUID
	RawPattern string
	CustomerID uuid.UUID
}

type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (*Mapping, error)
	CreateMapping(ctx context.Context, rawPattern string, customerID uuid.UUID) (*Mapping, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the customer whose longest learned pattern appears in the
// description, or nil when none does.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (*uuid.UUID, error) {
	m, err := s.repo.FindMatch(ctx, strings.TrimSpace(rawDescription))
	if err != nil || m == nil {
		return nil, err
	}

	return &m.CustomerID, nil
}

// Learn remembers that descriptions containing rawPattern are paid by customerID.
func (s *Service) Learn(ctx context.Context, rawPattern string, customerID uuid.UUID) (*Mapping, error) {
	rawPattern = strings.TrimSpace(rawPattern)
	if rawPattern == "" {
		return nil, ErrEmptyPattern
	}

	return s.repo.CreateMapping(ctx, rawPattern, customerID)
}
