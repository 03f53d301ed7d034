package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
)

const bcryptCost = 10

// UserService handles accounts and login. Hashing is bcrypt; the token
// itself comes from the injected TokenIssuer.
type UserService struct {
	DB     *gorm.DB
	Tokens *auth.TokenIssuer
}

func NewUserService(db *gorm.DB, tokens *auth.TokenIssuer) *UserService {
	return &UserService{DB: db, Tokens: tokens}
}

// AuthResult is what login/registration hand back to the HTTP layer.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Register creates an account with role "user". Email uniqueness is decided
// by the index, case-insensitively via normalization.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.ErrInvalidInput
	}
	if len(password) < 6 {
		return nil, apperrors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, translateDB(err)
	}

	return s.issueFor(user)
}

// Authenticate verifies credentials and issues a token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(translateDB(err), apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, translateDB(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueFor(user)
}

// Refresh re-issues a token with the same claims and a new expiry.
func (s *UserService) Refresh(tokenStr string) (*AuthResult, error) {
	p, err := s.Tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.Tokens.Issue(p.UserID, p.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: models.User{ID: p.UserID, Role: p.Role}}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateDB(err)
	}
	return &user, nil
}

// UpdateRole changes an account's role. Admin only; the role set is closed.
func (s *UserService) UpdateRole(ctx context.Context, p auth.Principal, userID string, role models.Role) (*models.User, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return translateDB(err)
		}
		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return translateDB(err)
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAll returns every account. Admin only.
func (s *UserService) ListAll(ctx context.Context, p auth.Principal) ([]models.User, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, translateDB(err)
	}
	return users, nil
}

func (s *UserService) issueFor(user models.User) (*AuthResult, error) {
	token, expiresAt, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
