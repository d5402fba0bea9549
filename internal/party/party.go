package party

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("party not found")

// Customer is a party that is billed for bookings. Its balance is never
// stored; see balance.Service.CustomerBalance.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxID     string
	CreatedAt time.Time
}

// Contractor carries out bookings. Balance is what the company currently owes
// the contractor net of payments recorded against them.
type Contractor struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Balance   decimal.Decimal
	CreatedAt time.Time
}
