package service

import (
	"errors"
	"testing"

	"go-retail-erp/internal/model"

	"gorm.io/gorm"
)

type fakeRoleRepo struct {
	roles []*model.Role
}

func (f *fakeRoleRepo) FindAll() ([]model.Role, error) {
	var out []model.Role
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoleRepo) FindByID(id uint) (*model.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) FindByCode(code string) (*model.Role, error) {
	for _, r := range f.roles {
		if r.Code == code {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) Create(role *model.Role) error {
	role.ID = uint(len(f.roles) + 1)
	f.roles = append(f.roles, role)
	return nil
}

func (f *fakeRoleRepo) SeedDefaults() error { return nil }

type fakePrivilegeRepo struct {
	privileges []model.Privilege
}

func (f *fakePrivilegeRepo) FindByCode(code string) (*model.Privilege, error) {
	for i := range f.privileges {
		if f.privileges[i].Code == code {
			return &f.privileges[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePrivilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var out []model.Privilege
	for _, code := range codes {
		for _, p := range f.privileges {
			if p.Code == code {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePrivilegeRepo) FindAll() ([]model.Privilege, error) {
	return f.privileges, nil
}

func (f *fakePrivilegeRepo) Create(privilege *model.Privilege) error {
	f.privileges = append(f.privileges, *privilege)
	return nil
}

func (f *fakePrivilegeRepo) SeedDefaults() error { return nil }

func newUserServiceFixture() (UserService, *fakeUserRepo, *fakeRoleRepo) {
	userRepo := newFakeUserRepo()
	roleRepo := &fakeRoleRepo{}
	roleRepo.Create(&model.Role{
		Code: model.RoleSalesRep,
		Name: "Sales Representative",
		Privileges: []model.Privilege{
			{ID: 1, Code: "order:view", Name: "View Order"},
			{ID: 2, Code: "order:create", Name: "Create Order"},
		},
	})
	privilegeRepo := &fakePrivilegeRepo{privileges: []model.Privilege{
		{ID: 1, Code: "order:view", Name: "View Order"},
		{ID: 2, Code: "order:create", Name: "Create Order"},
		{ID: 3, Code: "user:create", Name: "Create User"},
	}}
	return NewUserService(userRepo, privilegeRepo, roleRepo), userRepo, roleRepo
}

func TestCreateUserAssignsRolePrivileges(t *testing.T) {
	svc, _, roleRepo := newUserServiceFixture()

	user, err := svc.CreateUser(&CreateUserRequest{
		LoginName: "sara",
		Password:  "secret123",
		Username:  "Сараа",
		RoleID:    roleRepo.roles[0].ID,
	}, "creator-id")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if !user.IsActive {
		t.Fatal("new users start active")
	}
	if !user.CheckPassword("secret123") {
		t.Fatal("password must be hashed and verifiable")
	}
	if len(user.Privileges) != 2 {
		t.Fatalf("expected role privileges copied to the user, got %d", len(user.Privileges))
	}
	if user.CreatedBy != "creator-id" {
		t.Fatalf("expected audit trail, got %q", user.CreatedBy)
	}
}

func TestCreateUserRejectsDuplicateLoginName(t *testing.T) {
	svc, _, roleRepo := newUserServiceFixture()

	req := &CreateUserRequest{
		LoginName: "sara",
		Password:  "secret123",
		Username:  "Сараа",
		RoleID:    roleRepo.roles[0].ID,
	}
	if _, err := svc.CreateUser(req, "creator-id"); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}
	if _, err := svc.CreateUser(req, "creator-id"); !errors.Is(err, ErrLoginNameExists) {
		t.Fatalf("expected ErrLoginNameExists, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newUserServiceFixture()

	_, err := svc.CreateUser(&CreateUserRequest{
		LoginName: "sara",
		Password:  "secret123",
		Username:  "Сараа",
		RoleID:    99,
	}, "creator-id")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestUpdateUserPrivileges(t *testing.T) {
	svc, userRepo, roleRepo := newUserServiceFixture()

	user, err := svc.CreateUser(&CreateUserRequest{
		LoginName: "sara",
		Password:  "secret123",
		Username:  "Сараа",
		RoleID:    roleRepo.roles[0].ID,
	}, "creator-id")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	updated, err := svc.UpdateUserPrivileges(user.ID, []string{"order:view", "user:create"}, "updater-id")
	if err != nil {
		t.Fatalf("UpdateUserPrivileges failed: %v", err)
	}
	stored := userRepo.users[updated.ID]
	if len(stored.Privileges) != 2 {
		t.Fatalf("expected 2 privileges, got %d", len(stored.Privileges))
	}
	if !stored.HasPrivilege("user:create") {
		t.Fatal("expected user:create to be granted")
	}
}
