package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

type mockUserStore struct {
	users   map[string]*domain.User
	byEmail map[string]*domain.User
	creds   map[string]string
	tokens  map[string]*domain.RefreshToken
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:   map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
		creds:   map[string]string{},
		tokens:  map[string]*domain.RefreshToken{},
	}
}

func (m *mockUserStore) addUser(id, email, password string, active bool) {
	u := &domain.User{ID: id, Email: email, Role: domain.RoleAdmin, Active: active}
	m.users[id] = u
	m.byEmail[email] = u
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.creds[id] = string(hash)
}

func (m *mockUserStore) ListUsers(ctx context.Context, opts port.ListOptions) ([]domain.User, error) {
	return nil, nil
}
func (m *mockUserStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return u, nil
}
func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.byEmail[email], nil
}
func (m *mockUserStore) CreateUser(ctx context.Context, in *domain.UserInput, passwordHash string) (*domain.User, error) {
	u := &domain.User{ID: "u-new", Email: in.Email, FullName: in.FullName, Role: in.Role, Active: true}
	m.users[u.ID] = u
	m.byEmail[u.Email] = u
	m.creds[u.ID] = passwordHash
	return u, nil
}
func (m *mockUserStore) UpdateUser(ctx context.Context, id string, in *domain.UserInput) (*domain.User, error) {
	return m.GetUser(ctx, id)
}
func (m *mockUserStore) DeleteUser(ctx context.Context, id string) error { return nil }
func (m *mockUserStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}
func (m *mockUserStore) GetCredential(ctx context.Context, userID string) (*domain.Credential, error) {
	hash, ok := m.creds[userID]
	if !ok {
		return nil, nil
	}
	return &domain.Credential{UserID: userID, PasswordHash: hash}, nil
}
func (m *mockUserStore) SetCredential(ctx context.Context, userID, passwordHash string) error {
	m.creds[userID] = passwordHash
	return nil
}
func (m *mockUserStore) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &domain.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}
func (m *mockUserStore) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	return m.tokens[tokenHash], nil
}
func (m *mockUserStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	delete(m.tokens, tokenHash)
	return nil
}
func (m *mockUserStore) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	for hash, tok := range m.tokens {
		if tok.UserID == userID {
			delete(m.tokens, hash)
		}
	}
	return nil
}

func newAuthService(store *mockUserStore) *AuthService {
	return NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())
}

func TestLogin_IssuesValidAccessToken(t *testing.T) {
	store := newMockUserStore()
	store.addUser("u1", "admin@cuidese.app", "senha-forte", true)
	svc := newAuthService(store)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "admin@cuidese.app",
		Password: "senha-forte",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("missing tokens in login response")
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Sub != "u1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockUserStore()
	store.addUser("u1", "admin@cuidese.app", "senha-forte", true)
	svc := newAuthService(store)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "admin@cuidese.app",
		Password: "errada",
	})
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_MissingCredentialIsUniformlyRejected(t *testing.T) {
	store := newMockUserStore()
	u := &domain.User{ID: "u1", Email: "novo@cuidese.app", Role: domain.RoleAdmin, Active: true}
	store.users["u1"] = u
	store.byEmail[u.Email] = u // user row exists, credential row does not
	svc := newAuthService(store)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "novo@cuidese.app",
		Password: "qualquer",
	})
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if unauth.Message != "Credenciais inválidas" {
		t.Errorf("message = %q, want the same message as a wrong password", unauth.Message)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	store := newMockUserStore()
	store.addUser("u1", "ex@cuidese.app", "senha-forte", false)
	svc := newAuthService(store)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ex@cuidese.app",
		Password: "senha-forte",
	})
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	store := newMockUserStore()
	store.addUser("u1", "admin@cuidese.app", "senha-forte", true)
	svc := newAuthService(store)

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "admin@cuidese.app",
		Password: "senha-forte",
	})
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The spent token must be dead.
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("reused token error = %v, want ErrUnauthorized", err)
	}
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	store := newMockUserStore()
	store.addUser("u1", "admin@cuidese.app", "senha-antiga", true)
	svc := newAuthService(store)

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "admin@cuidese.app",
		Password: "senha-antiga",
	})
	if err != nil {
		t.Fatal(err)
	}

	err = svc.ChangePassword(context.Background(), "u1", &domain.ChangePasswordRequest{
		CurrentPassword: "senha-antiga",
		NewPassword:     "senha-nova-123",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), &domain.RefreshRequest{
		RefreshToken: login.RefreshToken,
	}); err == nil {
		t.Fatal("old session survived a password change")
	}

	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "admin@cuidese.app",
		Password: "senha-nova-123",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
