package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openInvoice(total, paid string) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:         uuid.New(),
		BookingID:  uuid.New(),
		CustomerID: uuid.New(),
		Total:      amount(total),
		Paid:       amount(paid),
		Status:     invoice.StatusPending,
	}
	inv.Settle()

	return inv
}

// expectApply wires a transaction that succeeds end to end for inv.
func expectApply(repo *payment.MockRepository, atx *payment.MockApplyTx, inv *invoice.Invoice) {
	repo.EXPECT().BeginApply(gomock.Any()).Return(atx, nil)
	atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	atx.EXPECT().CreatePayments(gomock.Any(), gomock.Any()).Return(nil)
	atx.EXPECT().UpdateInvoiceTotals(gomock.Any(), inv).Return(nil)
	atx.EXPECT().Commit().Return(nil)
	atx.EXPECT().Rollback().Return(nil).AnyTimes()
}

func TestService_ApplyPayments_Outcomes(t *testing.T) {
	tests := []struct {
		name          string
		total, paid   string
		amounts       []string
		wantStatus    invoice.Status
		wantRemaining string
		wantOutcome   payment.Outcome
		wantDue       string
		wantExcess    string
	}{
		{
			name: "ExactSettles", total: "1180", paid: "0", amounts: []string{"1180"},
			wantStatus: invoice.StatusPaid, wantRemaining: "0.00", wantOutcome: payment.OutcomeSettled,
			wantDue: "0.00", wantExcess: "0.00",
		},
		{
			name: "SplitPaymentsSettle", total: "1180", paid: "0", amounts: []string{"1000", "180"},
			wantStatus: invoice.StatusPaid, wantRemaining: "0.00", wantOutcome: payment.OutcomeSettled,
			wantDue: "0.00", wantExcess: "0.00",
		},
		{
			name: "Underpaid", total: "1180", paid: "0", amounts: []string{"500.50"},
			wantStatus: invoice.StatusPending, wantRemaining: "679.50", wantOutcome: payment.OutcomeUnderpaid,
			wantDue: "679.50", wantExcess: "0.00",
		},
		{
			name: "PaymentAfterPaidIsCredit", total: "1180", paid: "1180", amounts: []string{"100"},
			wantStatus: invoice.StatusPaid, wantRemaining: "-100.00", wantOutcome: payment.OutcomeOverpaid,
			wantDue: "0.00", wantExcess: "100.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := payment.NewMockRepository(ctrl)
			atx := payment.NewMockApplyTx(ctrl)
			inv := openInvoice(tt.total, tt.paid)

			expectApply(repo, atx, inv)

			inputs := make([]payment.Input, len(tt.amounts))
			for i, a := range tt.amounts {
				inputs[i] = payment.Input{Amount: amount(a), Method: payment.MethodBankTransfer}
			}

			res, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, inputs)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.Invoice.Status)
			assert.Equal(t, tt.wantRemaining, res.Invoice.Remaining.StringFixed(2))
			assert.True(t, res.Invoice.Remaining.Equal(res.Invoice.Total.Sub(res.Invoice.Paid)))
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantDue, res.Due.StringFixed(2))
			assert.Equal(t, tt.wantExcess, res.Excess.StringFixed(2))
			assert.Len(t, res.Payments, len(tt.amounts))

			for _, p := range res.Payments {
				assert.Equal(t, inv.ID, p.InvoiceID)
				assert.Equal(t, inv.BookingID, p.BookingID)
				require.NotNil(t, p.CustomerID)
				assert.Equal(t, inv.CustomerID, *p.CustomerID)
			}
		})
	}
}

func TestService_ApplyPayments_Validation(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []payment.Input
		wantErr error
	}{
		{name: "Empty", inputs: nil, wantErr: payment.ErrNoPayments},
		{name: "Zero", inputs: []payment.Input{{Amount: decimal.Zero, Method: payment.MethodCash}}, wantErr: payment.ErrInvalidAmount},
		{name: "Negative", inputs: []payment.Input{{Amount: amount("-5"), Method: payment.MethodCash}}, wantErr: payment.ErrInvalidAmount},
		{name: "SubCent", inputs: []payment.Input{{Amount: amount("10.001"), Method: payment.MethodCash}}, wantErr: payment.ErrInvalidAmount},
		{name: "UnknownMethod", inputs: []payment.Input{{Amount: amount("10"), Method: "barter"}}, wantErr: payment.ErrInvalidMethod},
		{
			name: "OneBadInBatch",
			inputs: []payment.Input{
				{Amount: amount("10"), Method: payment.MethodCash},
				{Amount: amount("0"), Method: payment.MethodCash},
			},
			wantErr: payment.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := payment.NewMockRepository(ctrl)

			_, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), uuid.New(), tt.inputs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_ApplyPayments_CreditsContractor(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	atx := payment.NewMockApplyTx(ctrl)

	contractor := uuid.New()
	inv := openInvoice("1180", "0")
	inv.ContractorID = &contractor

	expectApply(repo, atx, inv)
	atx.EXPECT().AdjustContractorBalance(gomock.Any(), contractor, amount("300")).Return(nil)
	atx.EXPECT().AdjustContractorBalance(gomock.Any(), contractor, amount("200")).Return(nil)

	_, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, []payment.Input{
		{Amount: amount("300"), Method: payment.MethodCash, ContractorID: &contractor},
		{Amount: amount("200"), Method: payment.MethodCheck, ContractorID: &contractor},
		{Amount: amount("680"), Method: payment.MethodCreditCard},
	})
	require.NoError(t, err)
}

func TestService_ApplyPayments_ContractorMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	atx := payment.NewMockApplyTx(ctrl)

	assigned := uuid.New()
	other := uuid.New()
	inv := openInvoice("100", "0")
	inv.ContractorID = &assigned

	repo.EXPECT().BeginApply(gomock.Any()).Return(atx, nil)
	atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	atx.EXPECT().Rollback().Return(nil)

	_, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, []payment.Input{
		{Amount: amount("100"), Method: payment.MethodCash, ContractorID: &other},
	})
	assert.ErrorIs(t, err, payment.ErrContractorMismatch)
}

func TestService_ApplyPayments_CustomerMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	atx := payment.NewMockApplyTx(ctrl)

	other := uuid.New()
	inv := openInvoice("118", "0")

	repo.EXPECT().BeginApply(gomock.Any()).Return(atx, nil)
	atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	atx.EXPECT().Rollback().Return(nil)

	_, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, []payment.Input{
		{Amount: amount("118"), Method: payment.MethodCash, CustomerID: &other},
	})
	require.ErrorIs(t, err, payment.ErrCustomerMismatch)
	assert.Equal(t, invoice.StatusPending, inv.Status)
}

func TestService_ApplyPayments_StoresInvoiceCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	atx := payment.NewMockApplyTx(ctrl)

	inv := openInvoice("118", "0")
	same := inv.CustomerID

	repo.EXPECT().BeginApply(gomock.Any()).Return(atx, nil)
	atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	atx.EXPECT().
		CreatePayments(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payments []*payment.Payment) error {
			require.Len(t, payments, 2)
			for _, p := range payments {
				require.NotNil(t, p.CustomerID)
				assert.Equal(t, inv.CustomerID, *p.CustomerID)
			}
			return nil
		})
	atx.EXPECT().UpdateInvoiceTotals(gomock.Any(), inv).Return(nil)
	atx.EXPECT().Commit().Return(nil)
	atx.EXPECT().Rollback().Return(nil).AnyTimes()

	_, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, []payment.Input{
		{Amount: amount("100"), Method: payment.MethodCash, CustomerID: &same},
		{Amount: amount("18"), Method: payment.MethodCash},
	})
	require.NoError(t, err)
}

func TestService_ApplyPayments_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(atx *payment.MockApplyTx, inv *invoice.Invoice)
		wantErr error
	}{
		{
			name: "InvoiceMissing",
			setup: func(atx *payment.MockApplyTx, inv *invoice.Invoice) {
				atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(nil, invoice.ErrNotFound)
			},
			wantErr: invoice.ErrNotFound,
		},
		{
			name: "DuplicateTransaction",
			setup: func(atx *payment.MockApplyTx, inv *invoice.Invoice) {
				atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(inv, nil)
				atx.EXPECT().CreatePayments(gomock.Any(), gomock.Any()).Return(payment.ErrDuplicatePayment)
			},
			wantErr: payment.ErrDuplicatePayment,
		},
		{
			name: "InvoiceUpdateFails",
			setup: func(atx *payment.MockApplyTx, inv *invoice.Invoice) {
				atx.EXPECT().LockInvoice(gomock.Any(), inv.ID).Return(inv, nil)
				atx.EXPECT().CreatePayments(gomock.Any(), gomock.Any()).Return(nil)
				atx.EXPECT().UpdateInvoiceTotals(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := payment.NewMockRepository(ctrl)
			atx := payment.NewMockApplyTx(ctrl)
			inv := openInvoice("100", "0")

			repo.EXPECT().BeginApply(gomock.Any()).Return(atx, nil)
			tt.setup(atx, inv)
			atx.EXPECT().Rollback().Return(nil)

			_, err := payment.NewService(repo, nil, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, []payment.Input{
				{Amount: amount("100"), Method: payment.MethodCash},
			})
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestService_ApplyPayments_Publishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	atx := payment.NewMockApplyTx(ctrl)
	pub := payment.NewMockPublisher(ctrl)
	inv := openInvoice("50", "0")

	expectApply(repo, atx, inv)
	pub.EXPECT().
		PublishPayments(gomock.Any(), inv, gomock.Len(1))

	_, err := payment.NewService(repo, pub, zap.NewNop()).ApplyPayments(context.Background(), inv.ID, []payment.Input{
		{Amount: amount("50"), Method: payment.MethodCash},
	})
	require.NoError(t, err)
}
