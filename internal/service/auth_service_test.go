package service

import (
	"errors"
	"testing"
	"time"

	"go-retail-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByLoginName(loginName string) (*model.User, error) {
	for _, u := range f.users {
		if u.LoginName == loginName {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (f *fakeUserRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Privileges = privileges
	return nil
}

func (f *fakeUserRepo) FindAll() ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TokenVersion = version
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(userID uuid.UUID) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	u.LastSeenAt = &now
	return nil
}

func activeUser(t *testing.T, loginName, password string) *model.User {
	t.Helper()
	u := &model.User{
		BaseModel: model.BaseModel{ID: uuid.New()},
		LoginName: loginName,
		Username:  "Test User",
		IsActive:  true,
	}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	return u
}

func TestLoginRotatesTokenVersion(t *testing.T) {
	user := activeUser(t, "sara", "secret123")
	user.TokenVersion = "stale"
	svc := NewAuthService(newFakeUserRepo(user), nil)

	resp, err := svc.Login("sara", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if user.TokenVersion == "stale" {
		t.Fatal("login must rotate the token version")
	}
	if user.LastSeenAt == nil {
		t.Fatal("login must record activity")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := activeUser(t, "sara", "secret123")
	svc := NewAuthService(newFakeUserRepo(user), nil)

	if _, err := svc.Login("sara", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown login, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	user := activeUser(t, "sara", "secret123")
	user.IsActive = false
	svc := NewAuthService(newFakeUserRepo(user), nil)

	if _, err := svc.Login("sara", "secret123"); !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestValidateTokenSingleSession(t *testing.T) {
	user := activeUser(t, "sara", "secret123")
	repo := newFakeUserRepo(user)
	svc := NewAuthService(repo, nil)

	first, err := svc.Login("sara", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := svc.ValidateToken(first.Token); err != nil {
		t.Fatalf("fresh token must validate: %v", err)
	}

	// A second login invalidates the first token
	if _, err := svc.Login("sara", "secret123"); err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if _, err := svc.ValidateToken(first.Token); !errors.Is(err, ErrSessionReplaced) {
		t.Fatalf("expected ErrSessionReplaced, got %v", err)
	}
}

func TestValidateTokenInactivityTimeout(t *testing.T) {
	user := activeUser(t, "sara", "secret123")
	repo := newFakeUserRepo(user)
	svc := NewAuthService(repo, nil)

	resp, err := svc.Login("sara", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	stale := time.Now().Add(-6 * time.Minute)
	user.LastSeenAt = &stale
	if _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrSessionTimeout) {
		t.Fatalf("expected ErrSessionTimeout, got %v", err)
	}

	user.LastSeenAt = nil
	if _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrSessionTimeout) {
		t.Fatalf("nil last-seen must also time out, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	user := activeUser(t, "sara", "secret123")
	svc := NewAuthService(newFakeUserRepo(user), nil)

	if err := svc.ResetPassword("sara", "wrong", "newpass1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ResetPassword("sara", "secret123", "newpass1"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if !user.CheckPassword("newpass1") {
		t.Fatal("new password should verify")
	}
	if user.CheckPassword("secret123") {
		t.Fatal("old password must no longer verify")
	}
}
