package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Paradox281/altura-go/internal/api"
	"github.com/Paradox281/altura-go/internal/domain"
	"github.com/Paradox281/altura-go/internal/storage"
)

// AuthResponse is the body of POST /auth/login and /auth/register.
type AuthResponse struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
	ID       int    `json:"id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileUpdate is the editable slice of the account record.
type ProfileUpdate struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
}

// AuthService exchanges credentials for a bearer token and owns the
// persisted token and identity.
type AuthService struct {
	api    *api.Client
	store  storage.Store
	logger *log.Logger
}

func NewAuthService(apiClient *api.Client, store storage.Store, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthService{api: apiClient, store: store, logger: logger}
}

// Login exchanges email and password for a token and persists the token
// plus a normalized identity before returning. The server occasionally
// omits the user id; the observed contract falls back to 1 so the rest of
// the app keeps working.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.api.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := s.persistSession(ctx, resp, email); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and persists the session exactly like Login.
func (s *AuthService) Register(ctx context.Context, fullname, email, password, phone string) (*AuthResponse, error) {
	req := registerRequest{Fullname: fullname, Email: email, Password: password, Phone: phone}
	var resp AuthResponse
	if err := s.api.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := s.persistSession(ctx, resp, email); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) persistSession(ctx context.Context, resp AuthResponse, email string) error {
	if err := s.store.Set(ctx, storage.KeyToken, resp.Token); err != nil {
		return fmt.Errorf("auth: persist token: %w", err)
	}

	id := resp.ID
	if id == 0 {
		id = 1
	}
	identity := domain.UserData{ID: id, Name: resp.Fullname, Email: email}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("auth: encode identity: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUserData, string(raw)); err != nil {
		return fmt.Errorf("auth: persist identity: %w", err)
	}
	return nil
}

// Logout clears the token and identity. It is idempotent and best-effort:
// a partial storage failure is logged, never surfaced.
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.store.Remove(ctx, storage.KeyToken); err != nil {
		s.logger.Printf("auth: clear token: %v", err)
	}
	if err := s.store.Remove(ctx, storage.KeyUserData); err != nil {
		s.logger.Printf("auth: clear identity: %v", err)
	}
}

// Token returns the persisted bearer token, or "" when absent or on any
// storage error. It never fails.
func (s *AuthService) Token(ctx context.Context) string {
	v, ok, err := s.store.Get(ctx, storage.KeyToken)
	if err != nil || !ok {
		return ""
	}
	return v
}

// UserData returns the persisted identity after the canonical normalization
// rule, or nil when nothing usable is stored. It never fails.
func (s *AuthService) UserData(ctx context.Context) *domain.UserData {
	raw, ok, err := s.store.Get(ctx, storage.KeyUserData)
	if err != nil || !ok {
		return nil
	}
	var u domain.UserData
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	normalized, usable := u.Normalize()
	if !usable {
		return nil
	}
	return &normalized
}

// Profile fetches the account record with booking history.
func (s *AuthService) Profile(ctx context.Context) (*domain.Profile, error) {
	var resp struct {
		Data domain.Profile `json:"data"`
	}
	if err := s.api.Get(ctx, "/user/profile", &resp); err != nil {
		s.logger.Printf("auth: fetch profile: %v", err)
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateProfile replaces the editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if err := s.api.Put(ctx, "/user/profile", update, nil); err != nil {
		s.logger.Printf("auth: update profile: %v", err)
		return err
	}
	return nil
}

// ChangePassword swaps the account password.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	req := changePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := s.api.Put(ctx, "/user/profile/password", req, nil); err != nil {
		s.logger.Printf("auth: change password: %v", err)
		return err
	}
	return nil
}
