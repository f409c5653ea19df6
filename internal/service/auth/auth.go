package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bkostadinov/finman/internal/apperrors"
	"github.com/bkostadinov/finman/internal/models"
	"github.com/bkostadinov/finman/internal/repository"
	"github.com/bkostadinov/finman/internal/service/auth/tokenmanager"
)

const refreshCookieName = "refreshtoken"

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

var DefaultHasher PasswordHasher = BcryptHasher{}

type Config struct {
	// Hasher to use during registration and login
	// Defaults to bcrypt
	Hasher PasswordHasher
}

type AuthService struct {
	token   *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, tokenManager *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	if tokenManager == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &AuthService{
		token:   tokenManager,
		hasher:  hasher,
		storage: storage,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, password string) (models.TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, username, hash)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	user, err := s.storage.User().GetUserByUsername(ctx, username)
	if err != nil {
		// Compare against an empty hash anyway to keep the timing of the
		// found and not-found paths close
		_ = s.hasher.Compare("", password)
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// RefreshPair rotates a valid refresh token into a fresh token pair
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.token.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh token owner not found. Err: %w", err)
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// GetUserFromRequest authenticates the request by its bearer access token
func (s *AuthService) GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error) {
	var user models.User

	header := r.Header.Get("Authorization")
	access, found := strings.CutPrefix(header, "Bearer ")
	if !found || access == "" {
		return user, errors.New("no bearer token in request")
	}

	userID, err := s.token.ParseAccess(access)
	if err != nil {
		return user, err
	}

	return s.storage.User().GetUserByID(ctx, userID)
}

// SetTokenPairToResponse writes the access token to the Authorization header
// and the refresh token to a httpOnly cookie
func (s *AuthService) SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair) {
	w.Header().Set("Authorization", "Bearer "+pair.Access.Value)
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/",
		MaxAge:   int(s.token.RefreshTTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetTokenPairToRequest sets the same authentication data on an outgoing
// request, mostly useful in tests
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
	r.AddCookie(&http.Cookie{Name: refreshCookieName, Value: pair.Refresh.Value})
}

// GetRefreshString reads the refresh token cookie from the request
func (s *AuthService) GetRefreshString(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", fmt.Errorf("refresh token cookie not found. Err: %w", err)
	}

	return cookie.Value, nil
}
