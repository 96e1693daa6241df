package app

import (
	"testing"
	"time"

	"chatbot-backend/internal/model"
	"chatbot-backend/internal/pkg/jwtutil"
)

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (f *fakeUserStore) Create(user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func newTestAuthService() *AuthService {
	return NewAuthService(newFakeUserStore(), "test-secret", 30*time.Minute)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	input := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}
	if _, err := svc.Register(input); err != nil {
		t.Fatalf("first register error: %v", err)
	}

	input.Email = "other@example.com"
	if _, err := svc.Register(input); err != ErrUsernameExists {
		t.Errorf("err = %v, want ErrUsernameExists", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("first register error: %v", err)
	}

	_, err := svc.Register(RegisterInput{Username: "bob", Email: "alice@example.com", Password: "password123"})
	if err != ErrEmailExists {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	_, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"})
	if err != ErrInvalidInput {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register error: %v", err)
	}

	result, err := svc.Login(LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("token username = %q, want alice", claims.Username)
	}

	user, err := svc.GetUserByID(claims.UserID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Errorf("profile = %+v, want registered user", user)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register error: %v", err)
	}

	// Unknown user and wrong password must be indistinguishable.
	_, errUnknown := svc.Login(LoginInput{Username: "nobody", Password: "password123"})
	_, errWrongPw := svc.Login(LoginInput{Username: "alice", Password: "wrongpassword"})
	if errUnknown != ErrInvalidCredential {
		t.Errorf("unknown user err = %v, want ErrInvalidCredential", errUnknown)
	}
	if errWrongPw != ErrInvalidCredential {
		t.Errorf("wrong password err = %v, want ErrInvalidCredential", errWrongPw)
	}
}
