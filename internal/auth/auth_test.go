package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memUserStorage struct {
	byEmail map[string]*User
}

func newMemUserStorage() *memUserStorage {
	return &memUserStorage{byEmail: make(map[string]*User)}
}

func (m *memUserStorage) CreateUser(_ context.Context, u *User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserStorage) GetUserByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (m *memUserStorage) GetUserByID(_ context.Context, id string) (*User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newMemUserStorage())

	user, err := authn.Register(ctx, "Amin@Example.com", "Amin", "correct horse")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if user.Email != "amin@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in clear")
	}

	if _, err := authn.Authenticate(ctx, "amin@example.com", "correct horse"); err != nil {
		t.Errorf("Authenticate() with right password: %v", err)
	}
	if _, err := authn.Authenticate(ctx, "amin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejectsWeakPasswordAndDuplicates(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newMemUserStorage())

	if _, err := authn.Register(ctx, "a@b.com", "", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password = %v, want ErrWeakPassword", err)
	}

	if _, err := authn.Register(ctx, "a@b.com", "", "long enough"); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if _, err := authn.Register(ctx, "a@b.com", "", "long enough"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email = %v, want ErrEmailExists", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	mgr := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	user := &User{ID: "u-1", Email: "a@b.com"}

	token, err := mgr.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	claims, err := mgr.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "a@b.com" {
		t.Errorf("claims = %+v, want user u-1", claims)
	}
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	user := &User{ID: "u-1", Email: "a@b.com"}

	expired := NewJWTManager("0123456789abcdef0123456789abcdef", -time.Minute)
	token, err := expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := expired.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token = %v, want ErrInvalidToken", err)
	}

	other := NewJWTManager("another-secret-key-entirely!!", time.Hour)
	good := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	token, err = other.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := good.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token = %v, want ErrInvalidToken", err)
	}
}
