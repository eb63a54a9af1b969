package service

import (
	"strings"

	"landgate/internal/titles/models"
)

// Aggregate lifecycle labels. Every derived status is one of these or
// models.StatusError.
const (
	StatusRequestIssuancePending          = "request_issuance_pending"
	StatusLandTitleIssued                 = "land_title_issued"
	StatusProposedRequestConsentDischarge = "proposed_request_to_add_consent_for_discharge"
	StatusProposedConsentDischarge        = "proposed_consent_for_discharge"
	StatusSalesAgreementCreated           = "sales_agreement_created"
	StatusProposedConsentNewCharge        = "proposed_consent_for_new_charge"
	StatusSalesAgreementApproved          = "sales_agreement_approved"
	StatusPaymentReceivedInEscrow         = "payment_received_in_escrow"
	StatusSalesAgreementSellerSigned      = "sales_agreement_seller_party_signed"
	StatusSalesAgreementCompleted         = "sales_agreement_completed"
	StatusLandTitleTransferred            = "land_title_transferred"
	StatusLandTitleNotYetIssued           = "land_title_not_yet_issued"
	StatusPaymentIssued                   = "payment_issued"
	StatusPaymentRequestForPayment        = "payment_request_for_payment"
	StatusPaymentFundsReleased            = "payment_funds_released"
)

// Issuance request statuses excluded from the pending check. A failed
// request must not mask the rest of the workflow.
const (
	issuanceFailed             = "failed"
	issuanceTitleAlreadyIssued = "title_already_issued"
)

// IssuanceHasFailed reports whether an issuance request is in a terminal
// failure state. The view builder uses it to build the failure-excluded
// issuance group.
func IssuanceHasFailed(status string) bool {
	return strings.EqualFold(status, issuanceFailed) || strings.EqualFold(status, issuanceTitleAlreadyIssued)
}

// DeriveStatus reduces the latest record of each entity group to one
// aggregate lifecycle label. Inputs are the heads of their per-title
// groups and may be nil when no unconsumed record of that type exists.
//
// The rule table is ordered and first-match wins. Several predicates can
// hold at once; the ordering is what resolves the ambiguity, so rules
// must not be reordered. Status comparison is case-insensitive.
func DeriveStatus(
	title *models.TitleRecord,
	issuanceNotFailed *models.IssuanceRequestRecord,
	agreement *models.AgreementRecord,
	payment *models.PaymentRecord,
	charges *models.ProposedChargesRecord,
) string {
	titleIs := func(want string) bool {
		return title != nil && strings.EqualFold(title.Status, want)
	}
	issuanceIs := func(want string) bool {
		return issuanceNotFailed != nil && strings.EqualFold(issuanceNotFailed.Status, want)
	}
	agreementIs := func(want string) bool {
		return agreement != nil && strings.EqualFold(agreement.Status, want)
	}
	paymentIs := func(want string) bool {
		return payment != nil && strings.EqualFold(payment.Status, want)
	}
	chargesIs := func(want string) bool {
		return charges != nil && strings.EqualFold(charges.Status, want)
	}

	rules := []struct {
		match func() bool
		label string
	}{
		{func() bool { return issuanceIs("pending") }, StatusRequestIssuancePending},
		{func() bool { return chargesIs("issued") && titleIs("issued") }, StatusLandTitleIssued},
		{func() bool { return chargesIs("request_to_add_consent_for_discharge") }, StatusProposedRequestConsentDischarge},
		{func() bool { return chargesIs("consent_for_discharge") }, StatusProposedConsentDischarge},
		{func() bool {
			return chargesIs("assign_buyer_conveyancer") && titleIs("assign_buyer_conveyancer") && agreementIs("created")
		}, StatusSalesAgreementCreated},
		{func() bool { return chargesIs("consent_for_new_charge") && agreementIs("created") }, StatusProposedConsentNewCharge},
		{func() bool { return agreementIs("approved") }, StatusSalesAgreementApproved},
		{func() bool { return paymentIs("confirm_payment_received_in_escrow") }, StatusPaymentReceivedInEscrow},
		{func() bool { return agreementIs("signed") }, StatusSalesAgreementSellerSigned},
		{func() bool { return agreementIs("completed") }, StatusSalesAgreementCompleted},
		{func() bool { return titleIs("transferred") }, StatusLandTitleTransferred},
		{func() bool { return chargesIs("issued") && title == nil }, StatusLandTitleNotYetIssued},
		{func() bool { return paymentIs("issued") }, StatusPaymentIssued},
		{func() bool { return paymentIs("request_for_payment") }, StatusPaymentRequestForPayment},
		{func() bool { return paymentIs("confirm_funds_released") }, StatusPaymentFundsReleased},
	}

	for _, rule := range rules {
		if rule.match() {
			return rule.label
		}
	}
	return models.StatusError
}
