// Package models holds the record payloads read from the ledger vault and
// the response views the gateway derives from them. Records are owned by
// the ledger; the gateway only decodes and reads them.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a postal address shared by titles and parties.
type Address struct {
	HouseNameNumber string `json:"house_name_number"`
	Street          string `json:"street"`
	TownCity        string `json:"town_city"`
	County          string `json:"county"`
	Country         string `json:"country"`
	Postcode        string `json:"postcode"`
}

// PartyDetails identifies an individual party (owner, buyer).
type PartyDetails struct {
	Identity  string  `json:"identity"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email_address"`
	Phone     string  `json:"phone_number"`
	Type      string  `json:"type"`
	Address   Address `json:"address"`
}

// Organisation is an X500-style organisation identity (conveyancers,
// lenders, settling parties).
type Organisation struct {
	Organisation       string  `json:"organisation"`
	Locality           string  `json:"locality"`
	Country            string  `json:"country"`
	State              *string `json:"state"`
	OrganisationalUnit *string `json:"organisational_unit"`
	CommonName         *string `json:"common_name"`
}

// Charge is a registered financial charge against a title.
type Charge struct {
	Date               time.Time       `json:"date"`
	Lender             Organisation    `json:"lender"`
	Amount             decimal.Decimal `json:"amount"`
	AmountCurrencyCode string          `json:"amount_currency_code"`
}

// Restriction kinds. A charge restriction carries the charge it secures;
// a plain restriction does not. Consumers switch on Kind instead of
// relying on subtype dispatch.
const (
	RestrictionKindPlain  = "ORES"
	RestrictionKindCharge = "CBCR"
)

// Restriction is a consent-gated restriction on a title. Charge is set
// only when Kind is RestrictionKindCharge.
type Restriction struct {
	ID              string       `json:"restriction_id"`
	Kind            string       `json:"restriction_type"`
	Text            string       `json:"restriction_text"`
	ConsentingParty Organisation `json:"consenting_party"`
	SignedActions   *string      `json:"signed_actions"`
	Date            time.Time    `json:"date"`
	Charge          *Charge      `json:"charge,omitempty"`
}

// TitleRecord is the registered land-title record.
type TitleRecord struct {
	TitleNumber      string           `json:"title_number"`
	Status           string           `json:"status"`
	TitleType        string           `json:"title_type"`
	Address          Address          `json:"address"`
	Owner            PartyDetails     `json:"owner"`
	OwnerConveyancer Organisation     `json:"owner_conveyancer"`
	LastSoldValue    *decimal.Decimal `json:"last_sold_value"`
	LastSoldCurrency *string          `json:"last_sold_value_currency_code"`
	Charges          []Charge         `json:"charges"`
	Restrictions     []Restriction    `json:"restrictions"`
}

// AgreementRecord is the buyer/seller sales agreement for a title.
type AgreementRecord struct {
	TitleNumber      string           `json:"title_number"`
	LinearID         string           `json:"linear_id"`
	Status           string           `json:"status"`
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
	TitleGuarantee   string           `json:"title_guarantee"`
}

// PaymentRecord tracks escrow for one agreement. LandAgreementID is the
// back-reference to the agreement's linear identifier.
type PaymentRecord struct {
	TitleNumber      string       `json:"title_number"`
	LinearID         string       `json:"linear_id"`
	Status           string       `json:"status"`
	LandAgreementID  string       `json:"land_agreement_id"`
	Buyer            PartyDetails `json:"buyer"`
	BuyerConveyancer Organisation `json:"buyer_conveyancer"`
	SettlingParty    Organisation `json:"settling_party"`
}

// ProposedChargesRecord carries the in-flight charges and restrictions
// proposed against a title.
type ProposedChargesRecord struct {
	TitleNumber  string        `json:"title_number"`
	Status       string        `json:"status"`
	Charges      []Charge      `json:"charges"`
	Restrictions []Restriction `json:"restrictions"`
}

// IssuanceRequestRecord is a request to issue a new title.
type IssuanceRequestRecord struct {
	TitleNumber string `json:"title_number"`
	Status      string `json:"status"`
}

// Key implementations let the grouping index partition any record stream
// by title number.
func (r TitleRecord) Key() string           { return r.TitleNumber }
func (r AgreementRecord) Key() string       { return r.TitleNumber }
func (r PaymentRecord) Key() string         { return r.TitleNumber }
func (r ProposedChargesRecord) Key() string { return r.TitleNumber }
func (r IssuanceRequestRecord) Key() string { return r.TitleNumber }

// Keyed is satisfied by every record type joined on a title number.
type Keyed interface {
	Key() string
}

// Versioned pairs a decoded record with the instant the ledger recorded
// it. The instant may be unavailable.
type Versioned[T any] struct {
	Record     T
	RecordedAt *time.Time
}
