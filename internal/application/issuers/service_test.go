package issuers

import (
	"context"
	"strings"
	"testing"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"
	pkgconst "brickmark-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupIssuerTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Issuer{}, &domain.User{}))
	return &Service{DB: db}, db
}

func TestGenerateIssuerCode(t *testing.T) {
	id := uuid.MustParse("aabbccdd-0000-0000-0000-000000000000")
	code := generateIssuerCode("Brick & Mortar Estates", id)
	assert.True(t, strings.HasPrefix(code, "BR-"))
	assert.Equal(t, "BR-AABBCC", code)

	// Short names pad with X.
	assert.True(t, strings.HasPrefix(generateIssuerCode("A", id), "AX-"))
}

func TestCreateIssuer_PromotesCreator(t *testing.T) {
	svc, db := setupIssuerTest(t)
	user := domain.User{Fullname: "Ada Example", Email: "ada@example.com", PasswordHash: "x", Role: "viewer"}
	require.NoError(t, db.Create(&user).Error)

	issuer, err := svc.CreateIssuer(context.Background(), CreateIssuerInput{
		IssuerName:  "Brick & Mortar Estates",
		CountryCode: "pt",
	}, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "PT", issuer.CountryCode)
	assert.Equal(t, "pending", issuer.KybStatus)
	assert.NotEmpty(t, issuer.IssuerCode)

	var reloaded domain.User
	require.NoError(t, db.Where("user_id = ?", user.UserID).First(&reloaded).Error)
	assert.Equal(t, pkgconst.Superadmin, reloaded.Role)
	require.NotNil(t, reloaded.IssuerID)
	assert.Equal(t, issuer.IssuerID, *reloaded.IssuerID)
}

func TestCreateIssuer_MissingFields(t *testing.T) {
	svc, _ := setupIssuerTest(t)
	_, err := svc.CreateIssuer(context.Background(), CreateIssuerInput{IssuerName: "X"}, uuid.New())
	assert.True(t, apperror.IsBadRequest(err))
}

func TestGetIssuer_WithMembers(t *testing.T) {
	svc, db := setupIssuerTest(t)
	user := domain.User{Fullname: "Ada Example", Email: "ada@example.com", PasswordHash: "x", Role: "viewer"}
	require.NoError(t, db.Create(&user).Error)

	issuer, err := svc.CreateIssuer(context.Background(), CreateIssuerInput{
		IssuerName:  "Brick & Mortar Estates",
		CountryCode: "PT",
	}, user.UserID)
	require.NoError(t, err)

	result, err := svc.GetIssuer(context.Background(), issuer.IssuerID)
	require.NoError(t, err)
	members := result["members"].([]domain.User)
	require.Len(t, members, 1)
	assert.Equal(t, user.UserID, members[0].UserID)
}

func TestGetIssuer_NotFound(t *testing.T) {
	svc, _ := setupIssuerTest(t)
	_, err := svc.GetIssuer(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateIssuer(t *testing.T) {
	svc, db := setupIssuerTest(t)
	user := domain.User{Fullname: "Ada Example", Email: "ada@example.com", PasswordHash: "x", Role: "viewer"}
	require.NoError(t, db.Create(&user).Error)

	issuer, err := svc.CreateIssuer(context.Background(), CreateIssuerInput{
		IssuerName:  "Brick & Mortar Estates",
		CountryCode: "PT",
	}, user.UserID)
	require.NoError(t, err)

	newName := "Harbor Estates"
	updated, err := svc.UpdateIssuer(context.Background(), issuer.IssuerID, UpdateIssuerInput{
		IssuerName: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Harbor Estates", updated.IssuerName)
	assert.Equal(t, "PT", updated.CountryCode)
}
