package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"landgate/internal/titles/models"
)

func title(status string) *models.TitleRecord {
	return &models.TitleRecord{TitleNumber: "ZQV888999", Status: status}
}

func issuance(status string) *models.IssuanceRequestRecord {
	return &models.IssuanceRequestRecord{TitleNumber: "ZQV888999", Status: status}
}

func agreement(status string) *models.AgreementRecord {
	return &models.AgreementRecord{TitleNumber: "ZQV888999", Status: status}
}

func payment(status string) *models.PaymentRecord {
	return &models.PaymentRecord{TitleNumber: "ZQV888999", Status: status}
}

func charges(status string) *models.ProposedChargesRecord {
	return &models.ProposedChargesRecord{TitleNumber: "ZQV888999", Status: status}
}

func TestDeriveStatusSingleRule(t *testing.T) {
	tests := []struct {
		name      string
		title     *models.TitleRecord
		issuance  *models.IssuanceRequestRecord
		agreement *models.AgreementRecord
		payment   *models.PaymentRecord
		charges   *models.ProposedChargesRecord
		want      string
	}{
		{
			name:     "issuance pending",
			issuance: issuance("pending"),
			want:     StatusRequestIssuancePending,
		},
		{
			name:    "charges and title issued",
			title:   title("issued"),
			charges: charges("issued"),
			want:    StatusLandTitleIssued,
		},
		{
			name:    "request to add consent for discharge",
			charges: charges("request_to_add_consent_for_discharge"),
			want:    StatusProposedRequestConsentDischarge,
		},
		{
			name:    "consent for discharge",
			charges: charges("consent_for_discharge"),
			want:    StatusProposedConsentDischarge,
		},
		{
			name:      "sales agreement created",
			title:     title("assign_buyer_conveyancer"),
			agreement: agreement("created"),
			charges:   charges("assign_buyer_conveyancer"),
			want:      StatusSalesAgreementCreated,
		},
		{
			name:      "consent for new charge",
			agreement: agreement("created"),
			charges:   charges("consent_for_new_charge"),
			want:      StatusProposedConsentNewCharge,
		},
		{
			name:      "agreement approved",
			agreement: agreement("approved"),
			want:      StatusSalesAgreementApproved,
		},
		{
			name:    "payment received in escrow",
			payment: payment("confirm_payment_received_in_escrow"),
			want:    StatusPaymentReceivedInEscrow,
		},
		{
			name:      "agreement signed",
			agreement: agreement("signed"),
			want:      StatusSalesAgreementSellerSigned,
		},
		{
			name:      "agreement completed",
			agreement: agreement("completed"),
			want:      StatusSalesAgreementCompleted,
		},
		{
			name:  "title transferred",
			title: title("transferred"),
			want:  StatusLandTitleTransferred,
		},
		{
			name:    "charges issued without title",
			charges: charges("issued"),
			want:    StatusLandTitleNotYetIssued,
		},
		{
			name:    "payment issued",
			payment: payment("issued"),
			want:    StatusPaymentIssued,
		},
		{
			name:    "request for payment",
			payment: payment("request_for_payment"),
			want:    StatusPaymentRequestForPayment,
		},
		{
			name:    "funds released",
			payment: payment("confirm_funds_released"),
			want:    StatusPaymentFundsReleased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.title, tt.issuance, tt.agreement, tt.payment, tt.charges)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatusPriority(t *testing.T) {
	t.Run("pending issuance wins over everything", func(t *testing.T) {
		got := DeriveStatus(
			title("transferred"),
			issuance("pending"),
			agreement("approved"),
			payment("confirm_funds_released"),
			charges("consent_for_discharge"),
		)
		assert.Equal(t, StatusRequestIssuancePending, got)
	})

	t.Run("escrow confirmation wins over agreement signed", func(t *testing.T) {
		got := DeriveStatus(nil, nil, agreement("signed"), payment("confirm_payment_received_in_escrow"), nil)
		assert.Equal(t, StatusPaymentReceivedInEscrow, got)
	})

	t.Run("transferred title wins over funds released", func(t *testing.T) {
		got := DeriveStatus(title("transferred"), nil, nil, payment("confirm_funds_released"), nil)
		assert.Equal(t, StatusLandTitleTransferred, got)
	})

	t.Run("discharge request wins over agreement approved", func(t *testing.T) {
		got := DeriveStatus(nil, nil, agreement("approved"), nil, charges("request_to_add_consent_for_discharge"))
		assert.Equal(t, StatusProposedRequestConsentDischarge, got)
	})
}

func TestDeriveStatusFallback(t *testing.T) {
	t.Run("no records at all", func(t *testing.T) {
		assert.Equal(t, models.StatusError, DeriveStatus(nil, nil, nil, nil, nil))
	})

	t.Run("unanticipated combination", func(t *testing.T) {
		// Intermediate issuance states have no label of their own.
		got := DeriveStatus(nil, issuance("approved"), nil, nil, nil)
		assert.Equal(t, models.StatusError, got)
	})

	t.Run("title present but not issued alongside issued charges", func(t *testing.T) {
		got := DeriveStatus(title("assign_buyer_conveyancer"), nil, nil, nil, charges("issued"))
		assert.Equal(t, models.StatusError, got)
	})
}

func TestDeriveStatusCaseInsensitive(t *testing.T) {
	lower := DeriveStatus(title("issued"), nil, nil, nil, charges("issued"))
	upper := DeriveStatus(title("ISSUED"), nil, nil, nil, charges("Issued"))
	assert.Equal(t, lower, upper)
	assert.Equal(t, StatusLandTitleIssued, upper)
}

func TestIssuanceHasFailed(t *testing.T) {
	assert.True(t, IssuanceHasFailed("FAILED"))
	assert.True(t, IssuanceHasFailed("failed"))
	assert.True(t, IssuanceHasFailed("TITLE_ALREADY_ISSUED"))
	assert.False(t, IssuanceHasFailed("pending"))
	assert.False(t, IssuanceHasFailed(""))
}
