package assets

import (
	"context"
	"strings"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates the asset catalogue. It owns the token pool the
// allocation engine partitions and implements its AssetDirectory contract.
type Service struct {
	DB *gorm.DB
}

// CreateAssetInput mirrors the create-asset request body.
type CreateAssetInput struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	AddressLine     string  `json:"address_line"`
	City            string  `json:"city"`
	CountryCode     string  `json:"country_code"`
	TokenSupply     int64   `json:"token_supply"`
	TokenSymbol     string  `json:"token_symbol"`
	TokenPriceCents int64   `json:"token_price_cents"`
}

// CreateAsset registers a property for the issuer. Token information is
// optional at creation; supply must be positive when provided.
func (s *Service) CreateAsset(ctx context.Context, issuerID uuid.UUID, in CreateAssetInput) (*domain.Asset, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.BadRequest("Asset name is required")
	}
	if in.TokenSupply < 0 {
		return nil, apperror.BadRequest("Token supply must be a positive integer")
	}
	if in.TokenPriceCents < 0 {
		return nil, apperror.BadRequest("Token price must not be negative")
	}

	asset := &domain.Asset{
		IssuerID:        issuerID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		AddressLine:     in.AddressLine,
		City:            in.City,
		CountryCode:     strings.ToUpper(in.CountryCode),
		Status:          "draft",
		TokenSupply:     in.TokenSupply,
		TokenSymbol:     strings.ToUpper(in.TokenSymbol),
		TokenPriceCents: in.TokenPriceCents,
	}
	if err := s.DB.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// GetAsset returns the issuer's asset; another tenant's asset reads as absent.
func (s *Service) GetAsset(ctx context.Context, assetID, issuerID uuid.UUID) (*domain.Asset, error) {
	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Where("asset_id = ? AND issuer_id = ?", assetID, issuerID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Asset not found")
		}
		return nil, err
	}
	return &asset, nil
}

// ListAssets returns all assets for the issuer, newest first.
func (s *Service) ListAssets(ctx context.Context, issuerID uuid.UUID) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := s.DB.WithContext(ctx).Where("issuer_id = ?", issuerID).Order(`"createdAt" DESC`).Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// TokenInfoInput mirrors the update-token-information request body.
type TokenInfoInput struct {
	TokenSupply     int64  `json:"token_supply"`
	TokenSymbol     string `json:"token_symbol"`
	TokenPriceCents int64  `json:"token_price_cents"`
}

// UpdateTokenInformation sets the asset's token pool. Once allocation
// categories exist the supply is frozen: changing it would silently break the
// sum-equals-supply property across the whole partition.
func (s *Service) UpdateTokenInformation(ctx context.Context, assetID, issuerID uuid.UUID, in TokenInfoInput) (*domain.Asset, error) {
	if in.TokenSupply <= 0 {
		return nil, apperror.BadRequest("Token supply must be a positive integer")
	}

	var updated *domain.Asset
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset domain.Asset
		if err := tx.Where("asset_id = ? AND issuer_id = ?", assetID, issuerID).First(&asset).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Asset not found")
			}
			return err
		}

		if in.TokenSupply != asset.TokenSupply {
			var count int64
			if err := tx.Model(&domain.AllocationCategory{}).Where("asset_id = ?", assetID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperror.BadRequest("Token supply cannot change once allocation categories exist")
			}
		}

		asset.TokenSupply = in.TokenSupply
		if in.TokenSymbol != "" {
			asset.TokenSymbol = strings.ToUpper(in.TokenSymbol)
		}
		if in.TokenPriceCents > 0 {
			asset.TokenPriceCents = in.TokenPriceCents
		}
		if err := tx.Save(&asset).Error; err != nil {
			return err
		}
		updated = &asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// TokenSupplyAndOwner implements the allocation engine's AssetDirectory
// contract: supply plus owning issuer, NotFound when the asset is absent.
func (s *Service) TokenSupplyAndOwner(ctx context.Context, assetID uuid.UUID) (int64, uuid.UUID, error) {
	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Select("asset_id", "issuer_id", "token_supply").Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, uuid.Nil, apperror.NotFound("Asset not found")
		}
		return 0, uuid.Nil, err
	}
	return asset.TokenSupply, asset.IssuerID, nil
}
