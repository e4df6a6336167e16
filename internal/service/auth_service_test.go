package service

import (
	"errors"
	"testing"
	"time"

	"audioscribe/internal/models"
)

// mockAuthRepo is a lightweight in-test mock for repository.Authorization.
type mockAuthRepo struct {
	CreateFn        func(username, hash string) (int, error)
	GetByUsernameFn func(username string) (*models.User, error)

	createCalls []struct {
		username string
		hash     string
	}
	getCalls []string
}

func (m *mockAuthRepo) Create(username, hash string) (int, error) {
	m.createCalls = append(m.createCalls, struct {
		username string
		hash     string
	}{username: username, hash: hash})
	return m.CreateFn(username, hash)
}

func (m *mockAuthRepo) GetByUsername(username string) (*models.User, error) {
	m.getCalls = append(m.getCalls, username)
	return m.GetByUsernameFn(username)
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, AuthConfig{SigningKey: "test-signing-key", TokenTTL: time.Hour})
}

// --- SignUp tests ---

func TestAuthService_SignUp_SuccessHashesPasswordAndCallsRepo(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			return 42, nil
		},
		GetByUsernameFn: func(username string) (*models.User, error) {
			return nil, nil // username free
		},
	}
	svc := newTestAuthService(mock)

	id, err := svc.SignUp("alice", "s3cr3t")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	// Ensure Create called exactly once with hashed password (not equal to raw) and valid bcrypt.
	if len(mock.createCalls) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.createCalls))
	}
	call := mock.createCalls[0]
	if call.username != "alice" {
		t.Errorf("expected username 'alice', got %q", call.username)
	}
	if call.hash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(call.hash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}
}

func TestAuthService_SignUp_EmptyFields(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			t.Fatal("Create should not be called for empty fields")
			return 0, nil
		},
		GetByUsernameFn: func(username string) (*models.User, error) {
			t.Fatal("GetByUsername should not be called for empty fields")
			return nil, nil
		},
	}
	svc := newTestAuthService(mock)

	for _, in := range []struct{ username, password string }{
		{"", "pass"},
		{"bob", "   "},
		{"  ", ""},
	} {
		if _, err := svc.SignUp(in.username, in.password); !errors.Is(err, ErrEmptyField) {
			t.Fatalf("SignUp(%q, %q): expected ErrEmptyField, got %v", in.username, in.password, err)
		}
	}
	if len(mock.createCalls) != 0 {
		t.Fatalf("expected no Create calls, got %d", len(mock.createCalls))
	}
}

func TestAuthService_SignUp_UsernameTaken(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			t.Fatal("Create should not be called when username is taken")
			return 0, nil
		},
		GetByUsernameFn: func(username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, PasswordHash: "existing"}, nil
		},
	}
	svc := newTestAuthService(mock)

	if _, err := svc.SignUp("warren", "asdfasdf"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if len(mock.createCalls) != 0 {
		t.Fatalf("expected stored record to be unchanged, got %d Create calls", len(mock.createCalls))
	}
}

// --- GenerateToken / ParseToken tests ---

func TestAuthService_AuthenticateRoundTrip(t *testing.T) {
	hash, err := hashPassword("asdfasdf")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			if username != "warren" {
				return nil, nil
			}
			return &models.User{ID: 7, Username: "warren", PasswordHash: hash}, nil
		},
	}
	svc := newTestAuthService(mock)

	token, err := svc.GenerateToken("warren", "asdfasdf")
	if err != nil {
		t.Fatalf("GenerateToken with correct password: %v", err)
	}

	p, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if p.UserID != 7 || p.Username != "warren" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestAuthService_GenerateToken_WrongPassword(t *testing.T) {
	hash, err := hashPassword("asdfasdf")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			return &models.User{ID: 7, Username: "warren", PasswordHash: hash}, nil
		},
	}
	svc := newTestAuthService(mock)

	if _, err := svc.GenerateToken("warren", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestAuthService_GenerateToken_UnknownUser(t *testing.T) {
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			return nil, nil
		},
	}
	svc := newTestAuthService(mock)

	if _, err := svc.GenerateToken("nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthService_ParseToken_Garbage(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	if _, err := svc.ParseToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}
