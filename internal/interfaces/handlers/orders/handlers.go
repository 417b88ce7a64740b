package orders

import (
	"strconv"

	ordersvc "brickmark-backend/internal/application/orders"
	"brickmark-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Handlers bundles order handlers with the service and the payment gateway.
type Handlers struct {
	Service       *ordersvc.Service
	StripeCreator StripePaymentIntentCreator
}

// StripePaymentIntentCreator abstracts Stripe PaymentIntent creation for testability.
type StripePaymentIntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error)
}

type StripePaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// RealStripeCreator uses the Stripe Go SDK to create PaymentIntents.
type RealStripeCreator struct {
	SecretKey string
}

func (r *RealStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	if r.SecretKey == "" {
		return nil, fiber.NewError(501, "Stripe integration pending")
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &StripePaymentIntentResult{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func issuerFromSession(c *fiber.Ctx) (uuid.UUID, bool) {
	m, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return uuid.Nil, false
	}
	raw, _ := m["issuer_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CreateOrder POST /api/v1/orders/create-order — records the order and
// returns the Stripe PaymentIntent client secret for checkout.
func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	issuerID, ok := issuerFromSession(c)
	if !ok {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}

	var body ordersvc.CreateOrderInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.AssetID == "" || body.AllocationID == "" || body.InvestorEmail == "" || body.Tokens == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	order, err := h.Service.CreateOrder(c.Context(), issuerID, body)
	if err != nil {
		return response.Fail(c, err)
	}

	if h.StripeCreator == nil {
		return response.Error(c, "Stripe not configured", 500, nil)
	}
	pi, err := h.StripeCreator.Create(order.AmountCents, order.Currency, map[string]string{
		"order_id": order.OrderID.String(),
		"asset_id": order.AssetID.String(),
		"tokens":   strconv.FormatInt(order.Tokens, 10),
	})
	if err != nil {
		code := 500
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		return response.Error(c, err.Error(), code, nil)
	}
	if err := h.Service.AttachPaymentIntent(c.Context(), order.OrderID, pi.ID); err != nil {
		log.Error().Err(err).Str("order_id", order.OrderID.String()).Msg("orders: failed to attach payment intent")
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	return response.SuccessCreated(c, "Order created successfully", fiber.Map{
		"order":             order,
		"payment_intent_id": pi.ID,
		"client_secret":     pi.ClientSecret,
	}, nil)
}

// ListOrders GET /api/v1/orders/view-orders/:asset_id
func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	issuerID, ok := issuerFromSession(c)
	if !ok {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
	}

	orders, err := h.Service.ListOrders(c.Context(), assetID, issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Orders fetched successfully", orders, nil)
}
