package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timeline entry names, fixed per entity group.
const (
	GroupLandTitle       = "land_title"
	GroupSalesAgreement  = "sales_agreement"
	GroupPayment         = "payment"
	GroupProposedCharges = "proposed_charges_and_restrictions"
	GroupRequestIssuance = "request_issuance"
)

// StatusError is the unmatched-fallback marker: emitted when no
// derivation rule matches so list views render something visibly wrong
// instead of failing.
const StatusError = "ERROR"

// StateSummary is one timeline entry: the sub-state's status and the
// instant its latest version was recorded.
type StateSummary struct {
	Status    string    `json:"state_status"`
	Timestamp time.Time `json:"timestamp"`
}

// TitleView renders title facts, either the current register or the
// proposed (in-flight) version of it.
type TitleView struct {
	Address          Address          `json:"address"`
	Owner            PartyDetails     `json:"owner"`
	OwnerConveyancer Organisation     `json:"owner_conveyancer"`
	TitleType        string           `json:"title_type"`
	LastSoldValue    *decimal.Decimal `json:"last_sold_value"`
	LastSoldCurrency *string          `json:"last_sold_value_currency_code"`
	Charges          []Charge         `json:"charges"`
	Restrictions     []Restriction    `json:"restrictions"`
}

// SalesAgreementView renders the agreement facts plus the settling party
// resolved from the referenced payment record.
type SalesAgreementView struct {
	Buyer            PartyDetails     `json:"buyer"`
	BuyerConveyancer Organisation     `json:"buyer_conveyancer"`
	CreationDate     time.Time        `json:"creation_date"`
	CompletionDate   time.Time        `json:"completion_date"`
	ContractRate     float64          `json:"contract_rate"`
	PurchasePrice    decimal.Decimal  `json:"purchase_price"`
	PurchaseCurrency string           `json:"purchase_price_currency_code"`
	Deposit          decimal.Decimal  `json:"deposit"`
	DepositCurrency  string           `json:"deposit_currency_code"`
	ContentsPrice    *decimal.Decimal `json:"contents_price"`
	ContentsCurrency *string          `json:"contents_price_currency_code"`
	Balance          decimal.Decimal  `json:"balance"`
	BalanceCurrency  string           `json:"balance_currency_code"`
	Guarantee        string           `json:"guarantee"`
	PaymentSettler   Organisation     `json:"payment_settler"`
	LatestUpdateDate *time.Time       `json:"latest_update_date"`
}

// TransferView is the aggregate read model for one title number. Status
// is always one of the derived lifecycle labels or StatusError.
type TransferView struct {
	TitleNumber    string                  `json:"title_number"`
	Title          *TitleView              `json:"title"`
	ProposedTitle  *TitleView              `json:"proposed_title"`
	SalesAgreement *SalesAgreementView     `json:"sales_agreement"`
	States         map[string]StateSummary `json:"states"`
	Status         string                  `json:"status"`
}
