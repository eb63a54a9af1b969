// Package service derives transfer views from ledger record streams: it
// joins the per-entity groups for a title number and reduces their
// states to one lifecycle status.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"landgate/internal/ledger"
	"landgate/internal/titles/metrics"
	"landgate/internal/titles/models"
	"landgate/internal/titles/store"
	dErrors "landgate/pkg/domain-errors"
)

// ConfirmPaymentAction is the workflow action submitted to the node when
// a settling party confirms a payment.
const ConfirmPaymentAction = "confirm-payment"

// Service exposes the conveyancing read model plus the thin write path.
type Service struct {
	store   *store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches domain metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service over the given record store.
func New(st *store.Store, opts ...Option) *Service {
	svc := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Get builds the transfer view for one title number. It returns
// (nil, nil) when the title, issuance, and payment groups are all empty
// for the key; the HTTP layer renders that as 404.
func (s *Service) Get(ctx context.Context, titleNumber string) (*models.TransferView, error) {
	titleVersions, err := store.FetchByTitle[models.TitleRecord](ctx, s.store, ledger.EntityLandTitle, titleNumber)
	if err != nil {
		return nil, err
	}
	issuanceVersions, err := store.FetchByTitle[models.IssuanceRequestRecord](ctx, s.store, ledger.EntityRequestIssuance, titleNumber)
	if err != nil {
		return nil, err
	}
	paymentVersions, err := store.FetchByTitle[models.PaymentRecord](ctx, s.store, ledger.EntityPayment, titleNumber)
	if err != nil {
		return nil, err
	}

	// Existence is decided by the groups that can open a workflow: a
	// title on the register, an issuance request, or a payment.
	if len(titleVersions) == 0 && len(issuanceVersions) == 0 && len(paymentVersions) == 0 {
		return nil, nil
	}

	agreementVersions, err := store.FetchByTitle[models.AgreementRecord](ctx, s.store, ledger.EntitySalesAgreement, titleNumber)
	if err != nil {
		return nil, err
	}
	chargesVersions, err := store.FetchByTitle[models.ProposedChargesRecord](ctx, s.store, ledger.EntityProposedCharges, titleNumber)
	if err != nil {
		return nil, err
	}

	view, err := BuildTransferView(
		titleNumber,
		titleVersions,
		agreementVersions,
		paymentVersions,
		chargesVersions,
		issuanceVersions,
		notFailed(issuanceVersions),
	)
	if err != nil {
		return nil, err
	}
	s.observeView(*view)
	return view, nil
}

// List builds one transfer view per title number known to any entity
// group. The five vault queries run concurrently; each view is then
// assembled from the grouped results without further queries. Result
// order is unspecified.
func (s *Service) List(ctx context.Context) ([]models.TransferView, error) {
	var (
		titleVersions     []models.Versioned[models.TitleRecord]
		agreementVersions []models.Versioned[models.AgreementRecord]
		paymentVersions   []models.Versioned[models.PaymentRecord]
		chargesVersions   []models.Versioned[models.ProposedChargesRecord]
		issuanceVersions  []models.Versioned[models.IssuanceRequestRecord]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		titleVersions, err = store.Fetch[models.TitleRecord](gctx, s.store, ledger.EntityLandTitle, nil)
		return err
	})
	g.Go(func() (err error) {
		agreementVersions, err = store.Fetch[models.AgreementRecord](gctx, s.store, ledger.EntitySalesAgreement, nil)
		return err
	})
	g.Go(func() (err error) {
		paymentVersions, err = store.Fetch[models.PaymentRecord](gctx, s.store, ledger.EntityPayment, nil)
		return err
	})
	g.Go(func() (err error) {
		chargesVersions, err = store.Fetch[models.ProposedChargesRecord](gctx, s.store, ledger.EntityProposedCharges, nil)
		return err
	})
	g.Go(func() (err error) {
		issuanceVersions, err = store.Fetch[models.IssuanceRequestRecord](gctx, s.store, ledger.EntityRequestIssuance, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views, err := BuildTransferViews(
		store.GroupByTitle(titleVersions),
		store.GroupByTitle(agreementVersions),
		store.GroupByTitle(paymentVersions),
		store.GroupByTitle(chargesVersions),
		store.GroupByTitle(issuanceVersions),
		store.GroupByTitle(notFailed(issuanceVersions)),
	)
	if err != nil {
		return nil, err
	}
	for _, view := range views {
		s.observeView(view)
	}
	return views, nil
}

// ConfirmPayment resolves the latest payment record for the title and
// submits the confirm-payment workflow action to the node.
func (s *Service) ConfirmPayment(ctx context.Context, titleNumber string) error {
	paymentVersions, err := store.FetchByTitle[models.PaymentRecord](ctx, s.store, ledger.EntityPayment, titleNumber)
	if err != nil {
		return err
	}
	latest := store.First(paymentVersions)
	if latest == nil {
		return dErrors.New(dErrors.CodeNotFound, "no payment record for title "+titleNumber)
	}

	action := ledger.Action{
		Type: ConfirmPaymentAction,
		Arguments: map[string]any{
			"title_number":      titleNumber,
			"payment_linear_id": latest.Record.LinearID,
		},
	}
	if err := s.store.Client().SubmitAction(ctx, action); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "payment confirmed",
		"title_number", titleNumber,
		"payment_linear_id", latest.Record.LinearID,
	)
	return nil
}

// Me returns the identity the gateway's ledger connection acts as.
func (s *Service) Me(ctx context.Context) (ledger.Party, error) {
	return s.store.Client().NodeIdentity(ctx)
}

// Peers returns the other participants on the ledger network.
func (s *Service) Peers(ctx context.Context) ([]ledger.Party, error) {
	me, err := s.store.Client().NodeIdentity(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Client().NetworkPeers(ctx)
	if err != nil {
		return nil, err
	}
	peers := make([]ledger.Party, 0, len(all))
	for _, p := range all {
		if p.Name == me.Name {
			continue
		}
		peers = append(peers, p)
	}
	return peers, nil
}

func (s *Service) observeView(view models.TransferView) {
	s.metrics.IncViewsBuilt()
	if view.Status == models.StatusError {
		s.metrics.IncStatusFallbacks()
	}
}

// notFailed filters an issuance group down to requests still eligible
// for the pending check, preserving order.
func notFailed(versions []models.Versioned[models.IssuanceRequestRecord]) []models.Versioned[models.IssuanceRequestRecord] {
	out := make([]models.Versioned[models.IssuanceRequestRecord], 0, len(versions))
	for _, v := range versions {
		if IssuanceHasFailed(v.Record.Status) {
			continue
		}
		out = append(out, v)
	}
	return out
}
