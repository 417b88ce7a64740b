package orders

import (
	"context"
	"time"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"
	"brickmark-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates investor token orders. Orders reserve nothing and move
// no tokens between categories; they record intent and payment state only.
type Service struct {
	DB *gorm.DB
}

// CreateOrderInput mirrors the create-order request body.
type CreateOrderInput struct {
	AssetID       string `json:"asset_id"`
	AllocationID  string `json:"allocation_id"`
	InvestorEmail string `json:"investor_email"`
	Tokens        int64  `json:"tokens"`
}

// CreateOrder validates the category is sellable (active, unvested, large
// enough) and records a pending order priced off the asset's token price.
func (s *Service) CreateOrder(ctx context.Context, issuerID uuid.UUID, in CreateOrderInput) (*domain.Order, error) {
	if !validation.IsValidEmail(in.InvestorEmail) {
		return nil, apperror.BadRequest("A valid investor email is required")
	}
	if in.Tokens <= 0 {
		return nil, apperror.BadRequest("Token amount must be greater than 0")
	}
	assetID, err := uuid.Parse(in.AssetID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid UUID format for asset_id")
	}
	allocationID, err := uuid.Parse(in.AllocationID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid UUID format for allocation_id")
	}

	var order *domain.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset domain.Asset
		if err := tx.Where("asset_id = ? AND issuer_id = ?", assetID, issuerID).First(&asset).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Asset not found")
			}
			return err
		}
		if asset.TokenPriceCents <= 0 {
			return apperror.BadRequest("Asset token price must be defined before taking orders")
		}

		var category domain.AllocationCategory
		if err := tx.Where("allocation_id = ? AND asset_id = ?", allocationID, assetID).First(&category).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Allocation category not found")
			}
			return err
		}
		if !category.IsActive {
			return apperror.BadRequest("Allocation category is not open for orders")
		}
		if category.VestingType != domain.NoVesting {
			return apperror.BadRequest("Orders are only accepted against unvested categories")
		}
		if in.Tokens > category.Tokens {
			return apperror.BadRequest("Token amount exceeds the category allocation")
		}

		o := domain.Order{
			AssetID:       assetID,
			AllocationID:  allocationID,
			InvestorEmail: in.InvestorEmail,
			Tokens:        in.Tokens,
			AmountCents:   in.Tokens * asset.TokenPriceCents,
			Currency:      "usd",
			Status:        "pending",
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AttachPaymentIntent stores the Stripe PaymentIntent id on a pending order.
func (s *Service) AttachPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	return s.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("order_id = ? AND status = ?", orderID, "pending").
		Update("payment_intent_id", paymentIntentID).Error
}

// MarkOrderPaid flips pending -> paid for the order carrying the payment
// intent. Idempotent: an already-paid order is left as is.
func (s *Service) MarkOrderPaid(ctx context.Context, paymentIntentID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.Where("payment_intent_id = ?", paymentIntentID).First(&order).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Order not found for payment intent")
			}
			return err
		}
		if order.Status == "paid" {
			return nil
		}
		now := time.Now()
		order.Status = "paid"
		order.PaidAt = &now
		return tx.Save(&order).Error
	})
}

// ListOrders returns all orders for the issuer's asset, newest first.
func (s *Service) ListOrders(ctx context.Context, assetID, issuerID uuid.UUID) ([]domain.Order, error) {
	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Select("asset_id").Where("asset_id = ? AND issuer_id = ?", assetID, issuerID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Asset not found")
		}
		return nil, err
	}

	var orders []domain.Order
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).Order(`"createdAt" DESC`).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
