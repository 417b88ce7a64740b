package auth

import (
	"testing"

	"brickmark-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUserDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		Fullname:     "Ada Example",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "viewer",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLoginUser_MissingFields(t *testing.T) {
	db := setupUserDB(t)
	_, err := LoginUser(db, LoginInput{Email: "a@b.com"})
	assert.Equal(t, ErrEmailPasswordRequired, err)
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	db := setupUserDB(t)
	_, err := LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "pw"})
	assert.Equal(t, ErrInvalidEmail, err)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	db := setupUserDB(t)
	seedUser(t, db, "ada@example.com", "correct-horse")
	_, err := LoginUser(db, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)
}

func TestLoginUser_Success(t *testing.T) {
	db := setupUserDB(t)
	seeded := seedUser(t, db, "ada@example.com", "correct-horse")
	u, err := LoginUser(db, LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, seeded.UserID, u.UserID)
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{"email": "a@b.com"})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	issuerID := uuid.New().String()
	u, err := VerifyUser(map[string]interface{}{
		"user_id":   "550e8400-e29b-41d4-a716-446655440000",
		"fullname":  "Ada Example",
		"email":     "ada@example.com",
		"role":      "superadmin",
		"issuer_id": issuerID,
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ada Example", u.Fullname)
	assert.Equal(t, "superadmin", u.Role)
	require.NotNil(t, u.IssuerID)
	assert.Equal(t, issuerID, *u.IssuerID)
}

func TestVerifyUser_NoIssuer(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id": "550e8400-e29b-41d4-a716-446655440000",
	})
	require.NoError(t, err)
	assert.Nil(t, u.IssuerID)
}
