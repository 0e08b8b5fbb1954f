package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Paradox281/altura-go/internal/api"
	"github.com/Paradox281/altura-go/internal/apitest"
	"github.com/Paradox281/altura-go/internal/session"
	"github.com/Paradox281/altura-go/internal/storage"
)

// memStore is an in-memory storage.Store with injectable failures.
type memStore struct {
	values    map[string]string
	getErr    error
	setErr    error
	removeErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memStore) Remove(ctx context.Context, key string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.values, key)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newStack wires a client against the fake server the way cmd/altura does:
// token reads from the store, 401 clears the session.
func newStack(t *testing.T, srv *apitest.Server) (*memStore, *session.Manager, *AuthService) {
	t.Helper()
	store := newMemStore()
	sess := session.NewManager(store)
	client := api.New(srv.URL,
		api.WithTokenSource(func(ctx context.Context) string {
			v, ok, err := store.Get(ctx, storage.KeyToken)
			if err != nil || !ok {
				return ""
			}
			return v
		}),
		api.WithUnauthorizedHook(func(ctx context.Context) {
			_ = sess.Logout(ctx)
		}),
	)
	return store, sess, NewAuthService(client, store, quietLogger())
}

func TestLoginPersistsTokenAndIdentity(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	acct := srv.Seed("a@x.com", "secret", "Andi")

	store, _, auth := newStack(t, srv)

	resp, err := auth.Login(ctx, "a@x.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Token == "" || resp.Fullname != "Andi" {
		t.Fatalf("unexpected auth response: %+v", resp)
	}

	if tok := auth.Token(ctx); tok != resp.Token {
		t.Fatalf("expected persisted token %q, got %q", resp.Token, tok)
	}
	user := auth.UserData(ctx)
	if user == nil {
		t.Fatal("expected persisted identity")
	}
	if user.ID != acct.ID || user.Name != "Andi" || user.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", user)
	}
	if _, ok := store.values[storage.KeyUserData]; !ok {
		t.Fatal("expected identity in store")
	}
}

func TestLoginFallsBackToIDOne(t *testing.T) {
	// Some deployed server builds omit the id field from the login body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token": "tok", "fullname": "Andi", "role": "user"})
	}))
	defer srv.Close()

	store := newMemStore()
	auth := NewAuthService(api.New(srv.URL), store, quietLogger())

	if _, err := auth.Login(context.Background(), "a@x.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	user := auth.UserData(context.Background())
	if user == nil || user.ID != 1 {
		t.Fatalf("expected fallback id 1, got %+v", user)
	}
}

func TestLoginRejectedPersistsNothing(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.Seed("a@x.com", "secret", "Andi")

	_, _, auth := newStack(t, srv)

	if _, err := auth.Login(ctx, "a@x.com", "wrong"); err == nil {
		t.Fatal("expected error for bad credentials")
	}
	if tok := auth.Token(ctx); tok != "" {
		t.Fatalf("expected no token after failed login, got %q", tok)
	}
	if auth.UserData(ctx) != nil {
		t.Fatal("expected no identity after failed login")
	}
}

func TestRegisterPersistsSession(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	_, _, auth := newStack(t, srv)

	resp, err := auth.Register(ctx, "Budi", "b@x.com", "secret", "0812")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if resp.Fullname != "Budi" {
		t.Fatalf("unexpected register response: %+v", resp)
	}
	user := auth.UserData(ctx)
	if user == nil || user.Email != "b@x.com" {
		t.Fatalf("expected persisted identity, got %+v", user)
	}
}

func TestTokenNeverFails(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("io error")
	auth := NewAuthService(nil, store, quietLogger())

	if tok := auth.Token(context.Background()); tok != "" {
		t.Fatalf("expected empty token on storage error, got %q", tok)
	}
}

func TestLogoutIsBestEffort(t *testing.T) {
	store := newMemStore()
	store.removeErr = errors.New("io error")
	auth := NewAuthService(nil, store, quietLogger())

	// Must not panic or surface the failure.
	auth.Logout(context.Background())
}

func TestUserDataAppliesCanonicalRule(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	auth := NewAuthService(nil, store, quietLogger())

	store.values[storage.KeyUserData] = `{"id":0,"name":"A","email":"a@x.com"}`
	if auth.UserData(ctx) != nil {
		t.Fatal("expected nil for identity without id")
	}

	store.values[storage.KeyUserData] = `{"id":7}`
	user := auth.UserData(ctx)
	if user == nil || user.Name == "" {
		t.Fatalf("expected lenient defaults for id-only identity, got %+v", user)
	}
}

func TestUnauthorizedClearsSessionEverywhere(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.Seed("a@x.com", "secret", "Andi")

	store, sess, auth := newStack(t, srv)
	if _, err := auth.Login(ctx, "a@x.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := sess.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if sess.Current().Phase != session.Authenticated {
		t.Fatal("expected Authenticated after login")
	}

	srv.ForceStatus = http.StatusUnauthorized
	_, err := auth.Profile(ctx)
	if !errors.Is(err, api.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	if tok := auth.Token(ctx); tok != "" {
		t.Fatalf("expected token cleared after 401, got %q", tok)
	}
	if _, ok := store.values[storage.KeyUserData]; ok {
		t.Fatal("expected identity cleared after 401")
	}
	if sess.Current().Phase != session.Anonymous {
		t.Fatal("expected Anonymous after 401")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.Seed("a@x.com", "secret", "Andi")

	_, _, auth := newStack(t, srv)
	if _, err := auth.Login(ctx, "a@x.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	profile, err := auth.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Fullname == "" {
		t.Fatalf("expected profile data, got %+v", profile)
	}

	if err := auth.UpdateProfile(ctx, ProfileUpdate{Email: "a@x.com", Fullname: "Andi W", Phone: "0812"}); err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if err := auth.ChangePassword(ctx, "secret", "Secret123!ABC"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
}
