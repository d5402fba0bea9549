package party

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNameRequired = errors.New("name is required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=party
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)

	CreateContractor(ctx context.Context, c *Contractor) error
	GetContractor(ctx context.Context, id uuid.UUID) (*Contractor, error)
	ListContractors(ctx context.Context) ([]*Contractor, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CustomerParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

type ContractorParams struct {
	Name  string
	Email string
	Phone string
}

func (s *Service) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	c := &Customer{
		Name:    name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
		TaxID:   params.TaxID,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// CreateContractor registers a contractor with a zero balance.
func (s *Service) CreateContractor(ctx context.Context, params ContractorParams) (*Contractor, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	c := &Contractor{
		Name:  name,
		Email: params.Email,
		Phone: params.Phone,
	}
	if err := s.repo.CreateContractor(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetContractor(ctx context.Context, id uuid.UUID) (*Contractor, error) {
	return s.repo.GetContractor(ctx, id)
}

func (s *Service) ListContractors(ctx context.Context) ([]*Contractor, error) {
	return s.repo.ListContractors(ctx)
}
