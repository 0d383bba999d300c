package loan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	domain "merry/internal/domain/loan"
	"merry/internal/domain/uow"
	"merry/internal/testutil/loanmock"
	"merry/internal/testutil/uowmock"
)

const (
	borrowerID  = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	guarantorID = "cccccccccccccccccccccccccccccccc"
	chamaID     = "dddddddddddddddddddddddddddddddd"
	loanID      = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func mockUsecase(loans *loanmock.Repo) *Usecase {
	repos := uow.Repos{Loans: loans}
	uc := NewUsecase(repos, uowmock.Passthrough(repos), nil, domain.DefaultPenaltyPolicy())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func validRequest() RequestInput {
	return RequestInput{
		ChamaID:          chamaID,
		BorrowerID:       borrowerID,
		Amount:           decimal.NewFromInt(10000),
		DueDate:          fixedNow.AddDate(0, 1, 0),
		GuarantorUserIDs: []string{guarantorID},
	}
}

func TestRequest_Rejects_WhenOpenLoanExists(t *testing.T) {
	uc := mockUsecase(&loanmock.Repo{
		HasOpenLoanFn: func(_ context.Context, chama, user string) (bool, error) {
			if chama != chamaID || user != borrowerID {
				t.Fatalf("unexpected lookup %s/%s", chama, user)
			}
			return true, nil
		},
		// Create() should never be called in this scenario; guard it:
		CreateFn: func(context.Context, *domain.Loan) error {
			t.Fatalf("Create must not be called when an open loan exists")
			return nil
		},
	})

	_, err := uc.Request(context.Background(), validRequest())
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
	if want := "already has an open loan"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not contain %q", err.Error(), want)
	}
}

func TestRequest_InvalidInput(t *testing.T) {
	uc := mockUsecase(&loanmock.Repo{})
	tests := []struct {
		name   string
		mutate func(in *RequestInput)
	}{
		{"short borrower id", func(in *RequestInput) { in.BorrowerID = "short" }},
		{"zero amount", func(in *RequestInput) { in.Amount = decimal.Zero }},
		{"due in the past", func(in *RequestInput) { in.DueDate = fixedNow.Add(-time.Hour) }},
		{"no guarantors", func(in *RequestInput) { in.GuarantorUserIDs = nil }},
		{"self guarantee", func(in *RequestInput) { in.GuarantorUserIDs = []string{borrowerID} }},
		{"duplicate guarantor", func(in *RequestInput) { in.GuarantorUserIDs = []string{guarantorID, guarantorID} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRequest()
			tt.mutate(&in)
			if _, err := uc.Request(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestApprove_RequiresEveryGuarantor(t *testing.T) {
	tests := []struct {
		name       string
		guarantors []domain.Guarantor
	}{
		{"none", nil},
		{"one pending", []domain.Guarantor{{Status: domain.GuarantorApproved}, {Status: domain.GuarantorPending}}},
		{"one rejected", []domain.Guarantor{{Status: domain.GuarantorRejected}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := mockUsecase(&loanmock.Repo{
				GetByIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) {
					return &domain.Loan{ID: loanID, UserID: borrowerID, ChamaID: chamaID, Status: domain.StatusPending}, nil
				},
				ListGuarantorsFn: func(context.Context, string) ([]domain.Guarantor, error) {
					return tt.guarantors, nil
				},
				SaveFn: func(context.Context, *domain.Loan) error {
					t.Fatalf("Save must not be called")
					return nil
				},
			})
			if _, err := uc.Approve(context.Background(), ApproveInput{LoanID: loanID, AdminID: guarantorID}); !errors.Is(err, apperr.ErrInvalidState) {
				t.Fatalf("want ErrInvalidState, got %v", err)
			}
		})
	}
}

func TestApprove_RejectsNonPending(t *testing.T) {
	uc := mockUsecase(&loanmock.Repo{
		GetByIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) {
			return &domain.Loan{ID: loanID, Status: domain.StatusActive}, nil
		},
		ListGuarantorsFn: func(context.Context, string) ([]domain.Guarantor, error) {
			t.Fatalf("guarantors must not be read for a non-pending loan")
			return nil, nil
		},
	})
	if _, err := uc.Approve(context.Background(), ApproveInput{LoanID: loanID}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestRecordPayment_OtherMemberForbidden(t *testing.T) {
	uc := mockUsecase(&loanmock.Repo{
		GetByIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) {
			return &domain.Loan{ID: loanID, UserID: borrowerID, Status: domain.StatusActive, Amount: decimal.NewFromInt(100), DueDate: fixedNow.AddDate(0, 1, 0)}, nil
		},
		CreatePaymentFn: func(context.Context, *domain.Payment) error {
			t.Fatalf("CreatePayment must not be called")
			return nil
		},
	})
	_, err := uc.RecordPayment(context.Background(), PaymentInput{LoanID: loanID, Amount: decimal.NewFromInt(10), ActorID: guarantorID})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := uc.RecordPayment(context.Background(), PaymentInput{LoanID: loanID, Amount: decimal.NewFromInt(10), Source: "mpesa"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown source: want ErrValidation, got %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	uc := mockUsecase(&loanmock.Repo{
		GetByIDFn: func(_ context.Context, id string) (*domain.Loan, error) {
			return &domain.Loan{
				ID: id, UserID: borrowerID, Status: domain.StatusActive,
				Amount: decimal.NewFromInt(10000), InterestRate: decimal.NewFromInt(10),
				AmountPaid: decimal.NewFromInt(4000), DueDate: fixedNow.AddDate(0, 0, 7),
			}, nil
		},
		ListGuarantorsFn: func(context.Context, string) ([]domain.Guarantor, error) { return nil, nil },
		ListPaymentsFn:   func(context.Context, string) ([]domain.Payment, error) { return nil, nil },
	})
	dto, err := uc.Get(context.Background(), loanID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if dto.ID != loanID || !dto.Breakdown.Outstanding.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("got %+v", dto.Breakdown)
	}
}
