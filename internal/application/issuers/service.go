package issuers

import (
	"context"
	"regexp"
	"strings"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"
	pkgconst "brickmark-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates issuer onboarding.
type Service struct {
	DB *gorm.DB
}

// CreateIssuerInput mirrors the create-issuer request body.
type CreateIssuerInput struct {
	IssuerName     string  `json:"issuer_name"`
	CountryCode    string  `json:"country_code"`
	RegistrationID *string `json:"registration_id"`
	LogoURL        *string `json:"logo_url"`
}

// generateIssuerCode derives a short display code: two letters of the name
// plus six hex chars of the id.
func generateIssuerCode(issuerName string, issuerID uuid.UUID) string {
	onlyLetters := regexp.MustCompile(`[^A-Za-z]`).ReplaceAllString(issuerName, "")
	prefix := strings.ToUpper(onlyLetters)
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	for len(prefix) < 2 {
		prefix += "X"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(issuerID.String(), "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return prefix + "-" + suffix
}

// CreateIssuer creates the tenant and promotes the creating user to superadmin.
func (s *Service) CreateIssuer(ctx context.Context, in CreateIssuerInput, userID uuid.UUID) (*domain.Issuer, error) {
	if in.IssuerName == "" || in.CountryCode == "" {
		return nil, apperror.BadRequest("issuer_name and country_code are required")
	}

	issuerID := uuid.New()
	issuer := &domain.Issuer{
		IssuerID:       issuerID,
		IssuerName:     strings.TrimSpace(in.IssuerName),
		IssuerCode:     generateIssuerCode(in.IssuerName, issuerID),
		CountryCode:    strings.ToUpper(in.CountryCode),
		KybStatus:      "pending",
		RegistrationID: in.RegistrationID,
		LogoURL:        in.LogoURL,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(issuer).Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"issuer_id": issuer.IssuerID,
				"role":      pkgconst.Superadmin,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return issuer, nil
}

// GetIssuer returns the issuer with its team members.
func (s *Service) GetIssuer(ctx context.Context, issuerID uuid.UUID) (map[string]interface{}, error) {
	var issuer domain.Issuer
	if err := s.DB.WithContext(ctx).Where("issuer_id = ?", issuerID).First(&issuer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Issuer not found")
		}
		return nil, err
	}

	var members []domain.User
	if err := s.DB.WithContext(ctx).Where("issuer_id = ?", issuerID).Find(&members).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"issuer":  issuer,
		"members": members,
	}, nil
}

// UpdateIssuerInput is a partial update; nil fields are left untouched.
type UpdateIssuerInput struct {
	IssuerName     *string `json:"issuer_name"`
	CountryCode    *string `json:"country_code"`
	RegistrationID *string `json:"registration_id"`
	LogoURL        *string `json:"logo_url"`
}

// UpdateIssuer merges the provided fields into the issuer record.
func (s *Service) UpdateIssuer(ctx context.Context, issuerID uuid.UUID, in UpdateIssuerInput) (*domain.Issuer, error) {
	var issuer domain.Issuer
	if err := s.DB.WithContext(ctx).Where("issuer_id = ?", issuerID).First(&issuer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Issuer not found")
		}
		return nil, err
	}

	if in.IssuerName != nil && *in.IssuerName != "" {
		issuer.IssuerName = strings.TrimSpace(*in.IssuerName)
	}
	if in.CountryCode != nil && *in.CountryCode != "" {
		issuer.CountryCode = strings.ToUpper(*in.CountryCode)
	}
	if in.RegistrationID != nil {
		issuer.RegistrationID = in.RegistrationID
	}
	if in.LogoURL != nil {
		issuer.LogoURL = in.LogoURL
	}

	if err := s.DB.WithContext(ctx).Save(&issuer).Error; err != nil {
		return nil, err
	}
	return &issuer, nil
}
