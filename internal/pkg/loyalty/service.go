package loyalty

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/config"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/provider"
)

// ErrInvalidSignature is returned for a delivery whose signature does not
// match when signatures are enforced.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Outcome is how a delivery ended.
type Outcome string

const (
	OutcomeRecorded      Outcome = "recorded"
	OutcomeUnlinked      Outcome = "unlinked"
	OutcomeBrandMismatch Outcome = "brand_mismatch"
	OutcomeOrphanRefund  Outcome = "orphan_refund"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeIgnored       Outcome = "ignored"
)

var outcomeMessages = map[Outcome]string{
	OutcomeRecorded:      "TRANSACTION RECEIVED",
	OutcomeUnlinked:      "Brand not linked to any organization",
	OutcomeBrandMismatch: "Brand linked to a different organization",
	OutcomeOrphanRefund:  "Original transaction not found",
	OutcomeDuplicate:     "Transaction already processed",
	OutcomeIgnored:       "Event type not handled",
}

// Result is the acknowledgment for a processed delivery.
type Result struct {
	Outcome Outcome
	Message string
	// Points is the balance adjustment made, zero unless recorded.
	Points float64
}

func result(o Outcome, points float64) *Result {
	return &Result{Outcome: o, Message: outcomeMessages[o], Points: points}
}

// Delivery is one inbound webhook request.
type Delivery struct {
	EventType string
	Body      []byte
	Signature string
	Timestamp string
	Host      string
}

// ClientSource hands out the Platform client acting as this service.
type ClientSource interface {
	AsClient(ctx context.Context) (platform.API, error)
}

// Store is the part of the repository the pipeline needs.
type Store interface {
	repository.OrganizationRepository
	repository.OrgConfigRepository
	repository.TransactionRepository
}

// Options configures a Service.
type Options struct {
	WebhookSecret    string
	StrictSignatures bool
	RefundPolicy     string
}

// Service turns provider transaction webhooks into Platform points
// adjustments and ledger rows.
type Service struct {
	store        Store
	clients      ClientSource
	secret       string
	strict       bool
	refundPolicy string
	newReference func() string
}

func NewService(store Store, clients ClientSource, opts Options) *Service {
	policy := opts.RefundPolicy
	if policy == "" {
		policy = config.RefundPolicyMatch
	}
	return &Service{
		store:        store,
		clients:      clients,
		secret:       opts.WebhookSecret,
		strict:       opts.StrictSignatures,
		refundPolicy: policy,
		newReference: uuid.NewString,
	}
}

// Process runs one delivery through validation, resolution, adjustment and
// recording. Not-applicable deliveries return a Result without error. An
// error means the delivery should be redelivered, except ErrInvalidSignature
// and provider.ErrMalformedEvent which are permanent.
func (s *Service) Process(ctx context.Context, d Delivery) (*Result, error) {
	callbackURL := provider.CallbackURL(d.Host, d.EventType)
	if !provider.VerifySignature(s.secret, d.Body, callbackURL, d.Timestamp, d.Signature) {
		if s.strict {
			log.Warnf("Rejected webhook %s with invalid signature", d.EventType)
			return nil, ErrInvalidSignature
		}
		log.Warnf("Webhook %s has an invalid signature, processing anyway", d.EventType)
	}

	if d.EventType != provider.EventTransactionAuth && d.EventType != provider.EventTransactionRefund {
		log.Infof("Ignoring webhook of type %s", d.EventType)
		return result(OutcomeIgnored, 0), nil
	}

	ev, err := provider.ParseTransactionEvent(d.Body)
	if err != nil {
		return nil, err
	}
	orgID := ev.Card.Metadata.OrganizationID

	linked, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load organization %s: %w", orgID, err)
	}
	if linked == nil {
		return result(OutcomeUnlinked, 0), nil
	}
	if linked.Brand.ID != "" && linked.Brand.ID != ev.Brand.ID {
		return result(OutcomeBrandMismatch, 0), nil
	}

	cfg, err := s.store.GetConfig(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", orgID, err)
	}
	ratio := cfg.PointsRatio()

	if d.EventType == provider.EventTransactionRefund {
		if ev.OriginalTransactionID == "" {
			return result(OutcomeOrphanRefund, 0), nil
		}
		original, err := s.store.GetTransactionByID(ctx, ev.OriginalTransactionID)
		if err != nil {
			return nil, fmt.Errorf("load original transaction %s: %w", ev.OriginalTransactionID, err)
		}
		if original == nil {
			return result(OutcomeOrphanRefund, 0), nil
		}
	}

	existing, err := s.store.GetTransactionByID(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", ev.ID, err)
	}
	if existing != nil {
		log.Infof("Transaction %s already recorded, skipping", ev.ID)
		return result(OutcomeDuplicate, 0), nil
	}

	points := s.points(d.EventType, ev.Amount, ratio)
	if err := s.adjust(ctx, ev, points); err != nil {
		return nil, err
	}

	tx := models.Transaction{
		TransactionID:      ev.ID,
		LokeCustomerID:     ev.Card.Metadata.CustomerID,
		LocationID:         ev.Location.ID,
		CardID:             ev.Card.ID,
		BrandID:            ev.Brand.ID,
		ProgramID:          ev.ProgramID,
		LokeOrganizationID: orgID,
		PointsAwarded:      points,
		Amount:             ev.Amount,
		Currency:           ev.Currency,
		CreatedAt:          ev.Created,
	}
	if _, err := s.store.CreateTransaction(ctx, tx); err != nil {
		// The adjustment reference is spent; retrying would credit twice.
		log.Errorf("Points adjusted but ledger write failed: transaction=%s org=%s customer=%s points=%v amount=%v %s: %v",
			tx.TransactionID, tx.LokeOrganizationID, tx.LokeCustomerID, tx.PointsAwarded, tx.Amount, tx.Currency, err)
	}

	return result(OutcomeRecorded, points), nil
}

func (s *Service) points(eventType string, amount, ratio float64) float64 {
	if eventType == provider.EventTransactionRefund && s.refundPolicy == config.RefundPolicyReverse {
		return -math.Abs(amount) * ratio
	}
	return amount * ratio
}

func (s *Service) adjust(ctx context.Context, ev *provider.TransactionEvent, points float64) error {
	api, err := s.clients.AsClient(ctx)
	if err != nil {
		return fmt.Errorf("platform client: %w", err)
	}
	reference := s.newReference()
	notes := "Card transaction " + ev.ID
	if err := api.AdjustCustomerPointsBalance(ctx, ev.Card.Metadata.OrganizationID, ev.Card.Metadata.CustomerID, reference, points, notes); err != nil {
		return fmt.Errorf("adjust points for transaction %s: %w", ev.ID, err)
	}
	log.Infof("Adjusted points for transaction %s: org=%s customer=%s points=%v reference=%s",
		ev.ID, ev.Card.Metadata.OrganizationID, ev.Card.Metadata.CustomerID, points, reference)
	return nil
}
