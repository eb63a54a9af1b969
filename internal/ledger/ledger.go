// Package ledger defines the gateway's view of the external ledger node:
// an append-only store of versioned records queried by entity type. The
// gateway never mutates records directly; writes go through workflow
// actions executed by the node itself.
package ledger

import (
	"context"
	"encoding/json"
	"time"
)

// EntityType names one record stream in the ledger vault.
type EntityType string

const (
	EntityLandTitle           EntityType = "land_title"
	EntitySalesAgreement      EntityType = "sales_agreement"
	EntityPayment             EntityType = "payment"
	EntityProposedCharges     EntityType = "proposed_charges_and_restrictions"
	EntityRequestIssuance     EntityType = "request_issuance"
	EntityInstructConveyancer EntityType = "instruct_conveyancer"
)

// Envelope is one unconsumed record version as returned by the vault:
// the raw payload plus the storage metadata the gateway needs. RecordedAt
// is the instant the node committed the version and may be unavailable.
type Envelope struct {
	Entity     EntityType      `json:"entity"`
	RefIndex   uint64          `json:"ref_index"`
	RecordedAt *time.Time      `json:"recorded_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Action is a workflow action submitted to the node's write path.
type Action struct {
	Type      string         `json:"type"`
	Arguments map[string]any `json:"arguments"`
}

// Party identifies a network participant by its X500-style name.
type Party struct {
	Organisation       string  `json:"organisation"`
	Locality           string  `json:"locality"`
	Country            string  `json:"country"`
	State              *string `json:"state"`
	OrganisationalUnit *string `json:"organisational_unit"`
	CommonName         *string `json:"common_name"`
	Name               string  `json:"name"`
}

// Client is the connection handle to one ledger node, scoped to one
// identity. It is passed explicitly to every consumer; there is no
// ambient singleton.
type Client interface {
	// QueryUnconsumed returns every unconsumed record of the given
	// entity type where our identity is a participant, ordered by
	// descending storage index. Transport failures propagate; they are
	// never collapsed into an empty result.
	QueryUnconsumed(ctx context.Context, entity EntityType) ([]Envelope, error)

	// SubmitAction runs a workflow action on the node and waits for
	// the node to accept it.
	SubmitAction(ctx context.Context, action Action) error

	// Subscribe returns the current unconsumed snapshot for the entity
	// type plus a channel of subsequently produced record batches. The
	// channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, entity EntityType) ([]Envelope, <-chan []Envelope, error)

	// NodeIdentity returns the identity this connection acts as.
	NodeIdentity(ctx context.Context) (Party, error)

	// NetworkPeers returns the other participants on the network.
	NetworkPeers(ctx context.Context) ([]Party, error)
}
