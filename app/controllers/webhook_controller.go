package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/loyalty"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/provider"
)

// DeliveryProcessor runs a webhook delivery through the points pipeline.
type DeliveryProcessor interface {
	Process(ctx context.Context, d loyalty.Delivery) (*loyalty.Result, error)
}

// OutcomeRecorder counts how deliveries were answered.
type OutcomeRecorder interface {
	Add(ctx context.Context, outcome string)
}

// Outcomes recorded for deliveries rejected before the pipeline decided.
const (
	outcomeInvalidSignature = "invalid_signature"
	outcomeMalformed        = "malformed"
	outcomeFailed           = "failed"
)

// WebhookController receives provider transaction webhooks.
type WebhookController struct {
	processor DeliveryProcessor
	outcomes  OutcomeRecorder
}

// NewWebhookController builds the controller. outcomes may be nil.
func NewWebhookController(processor DeliveryProcessor, outcomes OutcomeRecorder) *WebhookController {
	return &WebhookController{processor: processor, outcomes: outcomes}
}

func (wc *WebhookController) record(ctx context.Context, outcome string) {
	if wc.outcomes != nil {
		wc.outcomes.Add(ctx, outcome)
	}
}

// HandleWebhook acknowledges every delivery with a JSON message. Only
// failures the provider should redeliver get a 5xx.
func (wc *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	eventType := c.Params("type")
	body := append([]byte(nil), c.Body()...)

	res, err := wc.processor.Process(c.UserContext(), loyalty.Delivery{
		EventType: eventType,
		Body:      body,
		Signature: c.Get(provider.HeaderSignature),
		Timestamp: c.Get(provider.HeaderTimestamp),
		Host:      c.Get(fiber.HeaderHost),
	})
	ctx := c.UserContext()
	switch {
	case err == nil:
		wc.record(ctx, string(res.Outcome))
		return c.JSON(fiber.Map{"message": res.Message, "outcome": res.Outcome})
	case errors.Is(err, loyalty.ErrInvalidSignature):
		wc.record(ctx, outcomeInvalidSignature)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid signature"})
	case errors.Is(err, provider.ErrMalformedEvent):
		log.Warnf("Malformed %s webhook: %v", eventType, err)
		wc.record(ctx, outcomeMalformed)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid payload"})
	default:
		log.Errorf("Webhook %s failed: %v", eventType, err)
		wc.record(ctx, outcomeFailed)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal error"})
	}
}
