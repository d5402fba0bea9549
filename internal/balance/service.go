package balance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=balance
type Repository interface {
	CustomerTotals(ctx context.Context, customerID uuid.UUID) (*CustomerTotals, error)
	ContractorBalance(ctx context.Context, contractorID uuid.UUID) (*ContractorBalance, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CustomerBalance is the single place a customer's balance is computed:
// everything paid minus everything billed. Billed is the signed total of the
// invoices of live bookings plus the price of billable bookings that have not
// been invoiced yet, so a booking is never counted twice.
func (s *Service) CustomerBalance(ctx context.Context, customerID uuid.UUID) (*CustomerBalance, error) {
	totals, err := s.repo.CustomerTotals(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("loading customer totals: %w", err)
	}

	return &CustomerBalance{
		CustomerID: customerID,
		Paid:       totals.Paid,
		Invoiced:   totals.Invoiced,
		Unbilled:   totals.Unbilled,
		Balance:    totals.Paid.Sub(totals.Invoiced).Sub(totals.Unbilled),
	}, nil
}

func (s *Service) ContractorBalance(ctx context.Context, contractorID uuid.UUID) (*ContractorBalance, error) {
	return s.repo.ContractorBalance(ctx, contractorID)
}
