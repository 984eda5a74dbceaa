// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

const minPasswordLength = 6

type TokenService interface {
	GenerateToken(user *model.User) (string, error)
	// ValidateToken returns the user id and email carried by the token.
	ValidateToken(tokenStr string) (int, string, error)
}

type jwtService struct {
	secret     []byte
	expiryTime time.Duration
}

func NewJWTService(secret string, expiry time.Duration) TokenService {
	return &jwtService{secret: []byte(secret), expiryTime: expiry}
}

func (s *jwtService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.Itoa(user.ID),
		"email": user.Email,
		"exp":   now.Add(s.expiryTime).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *jwtService) ValidateToken(tokenStr string) (int, string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, "", err
	}
	if !token.Valid {
		return 0, "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", jwt.ErrTokenMalformed
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, "", err
	}
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, "", jwt.ErrTokenMalformed
	}
	email, _ := claims["email"].(string)
	return id, email, nil
}

// PublicUser is what auth responses expose.
type PublicUser struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func publicUser(u *model.User) PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

type AuthResult struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

type AuthService struct {
	Users  repository.UserRepositoryInterface
	Tokens TokenService
	Logger *slog.Logger
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, appErrors.NewValidation("Email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, appErrors.NewValidation("Password must be at least %d characters", minPasswordLength)
	}
	if _, err := normalizeEmail(email); err != nil {
		return nil, err
	}

	_, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		return nil, appErrors.NewValidation("User already exists with this email")
	}
	if !appErrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         "user",
		Active:       true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if appErrors.IsConflict(err) {
			return nil, appErrors.NewValidation("User already exists with this email")
		}
		return nil, err
	}

	token, err := s.Tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID)
	}
	return &AuthResult{Message: "User registered successfully", Token: token, User: publicUser(user)}, nil
}

var errBadCredentials = appErrors.NewUnauthorized("Invalid email or password")

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, appErrors.NewValidation("Email and password are required")
	}
	user, err := s.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if appErrors.IsNotFound(err) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.NewUnauthorized("Account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	token, err := s.Tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Message: "Login successful", Token: token, User: publicUser(user)}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int) (PublicUser, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return PublicUser{}, err
	}
	return publicUser(user), nil
}

// SetActive enables or disables login for a user.
func (s *AuthService) SetActive(ctx context.Context, email string, active bool) error {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	user.Active = active
	return s.Users.Update(ctx, user)
}
