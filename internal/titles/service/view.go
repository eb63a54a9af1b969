package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"landgate/internal/titles/models"
	"landgate/internal/titles/store"
	dErrors "landgate/pkg/domain-errors"
)

// statusTransferred on a title or agreement record means the transfer
// already completed; proposed/agreement sub-views are suppressed.
const statusTransferred = "transferred"

// fallbackCurrency fills the zero-valued monetary placeholders of the
// payment-only agreement view.
const fallbackCurrency = "GBP"

// BuildTransferView assembles the aggregate read model for one title
// number from its per-entity record groups. Each group is ordered by
// descending storage index; the head of a group is its authoritative
// version. Any group may be empty.
//
// The only hard failure is a missing payment back-reference for an
// active agreement; every other absence renders as a nil sub-view.
func BuildTransferView(
	titleNumber string,
	titleVersions []models.Versioned[models.TitleRecord],
	agreementVersions []models.Versioned[models.AgreementRecord],
	paymentVersions []models.Versioned[models.PaymentRecord],
	chargesVersions []models.Versioned[models.ProposedChargesRecord],
	issuanceVersions []models.Versioned[models.IssuanceRequestRecord],
	issuanceNotFailedVersions []models.Versioned[models.IssuanceRequestRecord],
) (*models.TransferView, error) {
	latestTitle := store.First(titleVersions)
	latestAgreement := store.First(agreementVersions)
	latestPayment := store.First(paymentVersions)
	latestCharges := store.First(chargesVersions)
	latestIssuance := store.First(issuanceVersions)
	latestIssuanceNotFailed := store.First(issuanceNotFailedVersions)

	states := make(map[string]models.StateSummary)
	addState := func(name, status string, recordedAt *time.Time) {
		if recordedAt == nil {
			return
		}
		states[name] = models.StateSummary{
			Status:    strings.ToLower(status),
			Timestamp: *recordedAt,
		}
	}
	if latestTitle != nil {
		addState(models.GroupLandTitle, latestTitle.Record.Status, latestTitle.RecordedAt)
	}
	if latestAgreement != nil {
		addState(models.GroupSalesAgreement, latestAgreement.Record.Status, latestAgreement.RecordedAt)
	}
	if latestPayment != nil {
		addState(models.GroupPayment, latestPayment.Record.Status, latestPayment.RecordedAt)
	}
	if latestCharges != nil {
		addState(models.GroupProposedCharges, latestCharges.Record.Status, latestCharges.RecordedAt)
	}
	if latestIssuance != nil {
		addState(models.GroupRequestIssuance, latestIssuance.Record.Status, latestIssuance.RecordedAt)
	}

	var titlePtr *models.TitleRecord
	if latestTitle != nil {
		titlePtr = &latestTitle.Record
	}
	var agreementPtr *models.AgreementRecord
	if latestAgreement != nil {
		agreementPtr = &latestAgreement.Record
	}
	var paymentPtr *models.PaymentRecord
	if latestPayment != nil {
		paymentPtr = &latestPayment.Record
	}
	var chargesPtr *models.ProposedChargesRecord
	if latestCharges != nil {
		chargesPtr = &latestCharges.Record
	}
	var issuancePtr *models.IssuanceRequestRecord
	if latestIssuanceNotFailed != nil {
		issuancePtr = &latestIssuanceNotFailed.Record
	}

	status := DeriveStatus(titlePtr, issuancePtr, agreementPtr, paymentPtr, chargesPtr)

	salesAgreement, err := buildSalesAgreement(latestAgreement, latestPayment, paymentVersions)
	if err != nil {
		return nil, err
	}

	return &models.TransferView{
		TitleNumber:    titleNumber,
		Title:          buildCurrentTitle(titlePtr),
		ProposedTitle:  buildProposedTitle(titlePtr, agreementPtr, chargesPtr),
		SalesAgreement: salesAgreement,
		States:         states,
		Status:         status,
	}, nil
}

// buildCurrentTitle renders the registered title facts, or nil when no
// title record exists yet.
func buildCurrentTitle(title *models.TitleRecord) *models.TitleView {
	if title == nil {
		return nil
	}
	return &models.TitleView{
		Address:          title.Address,
		Owner:            title.Owner,
		OwnerConveyancer: title.OwnerConveyancer,
		TitleType:        strings.ToLower(title.TitleType),
		LastSoldValue:    title.LastSoldValue,
		LastSoldCurrency: title.LastSoldCurrency,
		Charges:          title.Charges,
		Restrictions:     title.Restrictions,
	}
}

// buildProposedTitle renders the in-flight version of the title: the
// current facts overlaid with the proposed charges and restrictions.
// Buyer fields fall back to the current owner when no agreement exists
// yet, which models a charge proposed before any sale is agreed. A
// transferred title has no proposed version.
func buildProposedTitle(title *models.TitleRecord, agreement *models.AgreementRecord, charges *models.ProposedChargesRecord) *models.TitleView {
	if charges == nil || title == nil || strings.EqualFold(title.Status, statusTransferred) {
		return nil
	}

	owner := title.Owner
	ownerConveyancer := title.OwnerConveyancer
	soldValue := title.LastSoldValue
	soldCurrency := title.LastSoldCurrency
	if agreement != nil {
		owner = agreement.Buyer
		ownerConveyancer = agreement.BuyerConveyancer
		price := agreement.PurchasePrice
		currency := agreement.PurchaseCurrency
		soldValue = &price
		soldCurrency = &currency
	}

	return &models.TitleView{
		Address:          title.Address,
		Owner:            owner,
		OwnerConveyancer: ownerConveyancer,
		TitleType:        strings.ToLower(title.TitleType),
		LastSoldValue:    soldValue,
		LastSoldCurrency: soldCurrency,
		Charges:          charges.Charges,
		Restrictions:     charges.Restrictions,
	}
}

// buildSalesAgreement renders the agreement facts. The settling party
// lives on the payment record referencing the agreement, so an active
// agreement without a matching payment is a data-integrity fault. With
// no agreement at all, a payment record alone yields a partial view so
// payment-stage UIs can render buyer identity.
func buildSalesAgreement(
	agreement *models.Versioned[models.AgreementRecord],
	payment *models.Versioned[models.PaymentRecord],
	paymentVersions []models.Versioned[models.PaymentRecord],
) (*models.SalesAgreementView, error) {
	if agreement != nil && !strings.EqualFold(agreement.Record.Status, statusTransferred) {
		var referenced *models.PaymentRecord
		for i := range paymentVersions {
			if paymentVersions[i].Record.LandAgreementID == agreement.Record.LinearID {
				referenced = &paymentVersions[i].Record
				break
			}
		}
		if referenced == nil {
			return nil, dErrors.New(dErrors.CodeInvalidReference,
				"no payment record references agreement "+agreement.Record.LinearID)
		}
		a := agreement.Record
		return &models.SalesAgreementView{
			Buyer:            a.Buyer,
			BuyerConveyancer: a.BuyerConveyancer,
			CreationDate:     a.CreationDate,
			CompletionDate:   a.CompletionDate,
			ContractRate:     a.ContractRate,
			PurchasePrice:    a.PurchasePrice,
			PurchaseCurrency: a.PurchaseCurrency,
			Deposit:          a.Deposit,
			DepositCurrency:  a.DepositCurrency,
			ContentsPrice:    a.ContentsPrice,
			ContentsCurrency: a.ContentsCurrency,
			Balance:          a.Balance,
			BalanceCurrency:  a.BalanceCurrency,
			Guarantee:        strings.ToLower(a.TitleGuarantee),
			PaymentSettler:   referenced.SettlingParty,
			LatestUpdateDate: agreement.RecordedAt,
		}, nil
	}

	if payment == nil {
		return nil, nil
	}
	epoch := time.Unix(0, 0).UTC()
	return &models.SalesAgreementView{
		Buyer:            payment.Record.Buyer,
		BuyerConveyancer: payment.Record.BuyerConveyancer,
		CreationDate:     epoch,
		CompletionDate:   epoch,
		ContractRate:     0,
		PurchasePrice:    decimal.Zero,
		PurchaseCurrency: fallbackCurrency,
		Deposit:          decimal.Zero,
		DepositCurrency:  fallbackCurrency,
		ContentsPrice:    nil,
		ContentsCurrency: nil,
		Balance:          decimal.Zero,
		BalanceCurrency:  fallbackCurrency,
		Guarantee:        "full",
		PaymentSettler:   payment.Record.SettlingParty,
		LatestUpdateDate: payment.RecordedAt,
	}, nil
}

// BuildTransferViews assembles one view per title number across the
// union of every group's key set. Groups missing a key default to empty.
// The union carries no ordering; callers must not depend on list order.
func BuildTransferViews(
	titleGroups map[string][]models.Versioned[models.TitleRecord],
	agreementGroups map[string][]models.Versioned[models.AgreementRecord],
	paymentGroups map[string][]models.Versioned[models.PaymentRecord],
	chargesGroups map[string][]models.Versioned[models.ProposedChargesRecord],
	issuanceGroups map[string][]models.Versioned[models.IssuanceRequestRecord],
	issuanceNotFailedGroups map[string][]models.Versioned[models.IssuanceRequestRecord],
) ([]models.TransferView, error) {
	keys := make(map[string]struct{})
	for k := range titleGroups {
		keys[k] = struct{}{}
	}
	for k := range agreementGroups {
		keys[k] = struct{}{}
	}
	for k := range paymentGroups {
		keys[k] = struct{}{}
	}
	for k := range chargesGroups {
		keys[k] = struct{}{}
	}
	for k := range issuanceGroups {
		keys[k] = struct{}{}
	}
	for k := range issuanceNotFailedGroups {
		keys[k] = struct{}{}
	}

	views := make([]models.TransferView, 0, len(keys))
	for key := range keys {
		view, err := BuildTransferView(
			key,
			titleGroups[key],
			agreementGroups[key],
			paymentGroups[key],
			chargesGroups[key],
			issuanceGroups[key],
			issuanceNotFailedGroups[key],
		)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}
