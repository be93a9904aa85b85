package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.User
	seq       int
	findErr   error // if set, every lookup returns this error
	updateErr error
	touched   map[string]time.Time
	listed    []ports.ListUsersFilter
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]*domain.User),
		touched: make(map[string]time.Time),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.LastLogin != nil {
		ts := *u.LastLogin
		clone.LastLogin = &ts
	}
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.listed = append(r.listed, f)
	var matched []*domain.User
	for _, u := range r.byID {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Username+" "+u.FullName+" "+u.Email), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.User{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := cloneUser(u)
	created.ID = fmt.Sprintf("u%03d", r.seq)
	r.byID[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	ts := at
	u.LastLogin = &ts
	r.touched[id] = at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubAuditRepo struct {
	entries   []*domain.AuditEntry
	recordErr error
}

func (a *stubAuditRepo) Record(_ context.Context, e *domain.AuditEntry) error {
	if a.recordErr != nil {
		return a.recordErr
	}
	a.entries = append(a.entries, e)
	return nil
}

func (a *stubAuditRepo) Recent(_ context.Context, limit int) ([]*domain.AuditEntry, error) {
	out := make([]*domain.AuditEntry, 0, limit)
	for i := len(a.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func seedUser(t *testing.T, repo *stubUserRepo, username string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(username+"-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := repo.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func strPtr(s string) *string { return &s }

func rolePtr(r domain.Role) *domain.Role { return &r }

func boolPtr(b bool) *bool { return &b }

// ---------------------------------------------------------------------------
// Register / Create
// ---------------------------------------------------------------------------

func TestUserService_Register_AlwaysUserRole(t *testing.T) {
	repo := newStubUserRepo()
	audit := &stubAuditRepo{}
	svc := NewUserService(repo, audit, discardLogger)

	u, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "password1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("expected role user, got %s", u.Role)
	}
	if !u.IsActive {
		t.Error("new users must be active")
	}
	if u.LastLogin != nil {
		t.Error("new users must have a nil last login")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password1")) != nil {
		t.Error("stored hash does not match password")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditUserRegistered {
		t.Errorf("expected a registration audit entry, got %+v", audit.entries)
	}
}

func TestUserService_Register_Duplicates(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	seedUser(t, repo, "alice", domain.RoleUser)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Email: "new@example.com", Password: "password1"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	_, err = svc.Register(context.Background(), ports.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "password1"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_PasswordTooLong(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	alice := seedUser(t, repo, "alice", domain.RoleUser)
	long := strings.Repeat("x", domain.MaxPasswordBytes+1)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "bob@example.com", Password: long})
	if !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Errorf("Register: expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("bob must not be stored, lookup returned %v", err)
	}

	_, err = svc.Update(context.Background(), alice, alice.ID, ports.UpdateUserInput{Password: &long})
	if !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Errorf("Update: expected ErrPasswordTooLong, got %v", err)
	}

	exact := strings.Repeat("x", domain.MaxPasswordBytes)
	if _, err := svc.Update(context.Background(), alice, alice.ID, ports.UpdateUserInput{Password: &exact}); err != nil {
		t.Errorf("Update with %d-byte password: %v", domain.MaxPasswordBytes, err)
	}
}

func TestUserService_Create_ManagerCannotElevate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)

	_, err := svc.Create(context.Background(), mgr, ports.CreateUserInput{
		Username: "boss", Email: "boss@example.com", Password: "password1", Role: domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrRoleElevationForbidden) {
		t.Fatalf("expected ErrRoleElevationForbidden, got %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "boss"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatal("rejected create must not persist anything")
	}

	u, err := svc.Create(context.Background(), mgr, ports.CreateUserInput{
		Username: "carol", Email: "carol@example.com", Password: "password1", Role: domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("manager creating a user must succeed, got %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("expected role user, got %s", u.Role)
	}
}

func TestUserService_Create_DefaultsToUserRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)

	u, err := svc.Create(context.Background(), admin, ports.CreateUserInput{
		Username: "dave", Email: "dave@example.com", Password: "password1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("expected default role user, got %s", u.Role)
	}
}

func TestUserService_Create_AdminMayCreateAdmins(t *testing.T) {
	repo := newStubUserRepo()
	audit := &stubAuditRepo{}
	svc := NewUserService(repo, audit, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)

	u, err := svc.Create(context.Background(), admin, ports.CreateUserInput{
		Username: "second", Email: "second@example.com", Password: "password1", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Errorf("expected admin, got %s", u.Role)
	}
	if len(audit.entries) != 1 || audit.entries[0].ActorID != admin.ID || audit.entries[0].TargetID != u.ID {
		t.Errorf("unexpected audit trail: %+v", audit.entries)
	}
}

func TestUserService_Create_DuplicateReportedBeforeForbidden(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)
	seedUser(t, repo, "alice", domain.RoleUser)

	// Same email, different username, and a role the manager may not grant.
	_, err := svc.Create(context.Background(), mgr, ports.CreateUserInput{
		Username: "alice2", Email: "alice@example.com", Password: "password1", Role: domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if errors.Is(err, domain.ErrForbidden) {
		t.Fatal("duplicate must be reported instead of forbidden")
	}
}

func TestUserService_Create_RepoRace(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)

	// Lookups miss, the insert hits the unique index.
	svc.repo = &racingRepo{stubUserRepo: repo}

	_, err := svc.Create(context.Background(), admin, ports.CreateUserInput{
		Username: "root", Email: "other@example.com", Password: "password1",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// racingRepo hides existing users from lookups, as if they were inserted
// concurrently between the uniqueness check and the insert.
type racingRepo struct{ *stubUserRepo }

func (r *racingRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *racingRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestUserService_Update_ManagerRoleFieldForbidden(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	// Re-asserting the current role is still a role change attempt.
	_, err := svc.Update(context.Background(), mgr, alice.ID, ports.UpdateUserInput{Role: rolePtr(domain.RoleUser)})
	if !errors.Is(err, domain.ErrRoleChangeForbidden) {
		t.Fatalf("expected ErrRoleChangeForbidden, got %v", err)
	}
}

func TestUserService_Update_AdminChangesRole(t *testing.T) {
	repo := newStubUserRepo()
	audit := &stubAuditRepo{}
	svc := NewUserService(repo, audit, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	updated, err := svc.Update(context.Background(), admin, alice.ID, ports.UpdateUserInput{Role: rolePtr(domain.RoleTechnician)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != domain.RoleTechnician {
		t.Errorf("expected technician, got %s", updated.Role)
	}

	stored, _ := repo.FindByID(context.Background(), alice.ID)
	if stored.Role != domain.RoleTechnician {
		t.Errorf("stored role not updated: %s", stored.Role)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditRoleChanged || audit.entries[0].Detail != "user -> technician" {
		t.Errorf("expected a role_changed audit entry, got %+v", audit.entries)
	}
}

func TestUserService_Update_SelfProfileEdit(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	updated, err := svc.Update(context.Background(), alice, alice.ID, ports.UpdateUserInput{
		FullName: strPtr("Alice Liddell"),
		Email:    strPtr("liddell@example.com"),
		Password: strPtr("new-password"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FullName != "Alice Liddell" || updated.Email != "liddell@example.com" {
		t.Errorf("profile not updated: %+v", updated)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password")) != nil {
		t.Error("password not rehashed")
	}
	if updated.Role != domain.RoleUser {
		t.Error("role must not change")
	}
}

func TestUserService_Update_OtherUserNeedsManager(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	tech := seedUser(t, repo, "tech", domain.RoleTechnician)
	alice := seedUser(t, repo, "alice", domain.RoleUser)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)

	_, err := svc.Update(context.Background(), tech, alice.ID, ports.UpdateUserInput{FullName: strPtr("x")})
	if !errors.Is(err, domain.ErrUpdateForbidden) {
		t.Fatalf("technician editing another user: expected ErrUpdateForbidden, got %v", err)
	}

	if _, err := svc.Update(context.Background(), mgr, alice.ID, ports.UpdateUserInput{FullName: strPtr("Alice M")}); err != nil {
		t.Fatalf("manager editing a user must succeed, got %v", err)
	}
}

func TestUserService_Update_AuthorityBeforeExistence(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	_, err := svc.Update(context.Background(), alice, "missing", ports.UpdateUserInput{FullName: strPtr("x")})
	if !errors.Is(err, domain.ErrUpdateForbidden) {
		t.Fatalf("expected ErrUpdateForbidden, got %v", err)
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)

	_, err := svc.Update(context.Background(), admin, "missing", ports.UpdateUserInput{FullName: strPtr("x")})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update_EmailTakenBeforeRoleForbidden(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)
	alice := seedUser(t, repo, "alice", domain.RoleUser)
	seedUser(t, repo, "bob", domain.RoleUser)

	_, err := svc.Update(context.Background(), mgr, alice.ID, ports.UpdateUserInput{
		Email: strPtr("bob@example.com"),
		Role:  rolePtr(domain.RoleAdmin),
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_Update_SameEmailIsNotDuplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	if _, err := svc.Update(context.Background(), alice, alice.ID, ports.UpdateUserInput{Email: strPtr(alice.Email)}); err != nil {
		t.Fatalf("keeping own email must succeed, got %v", err)
	}
}

func TestUserService_Update_Deactivation(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	alice := seedUser(t, repo, "alice", domain.RoleUser)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)

	if _, err := svc.Update(context.Background(), alice, alice.ID, ports.UpdateUserInput{IsActive: boolPtr(false)}); !errors.Is(err, domain.ErrActivationForbidden) {
		t.Fatalf("expected ErrActivationForbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), mgr, alice.ID, ports.UpdateUserInput{IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("manager deactivation must succeed, got %v", err)
	}
	if updated.IsActive {
		t.Error("expected user to be inactive")
	}
}

func TestUserService_Update_RepoError(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	alice := seedUser(t, repo, "alice", domain.RoleUser)
	repo.updateErr = errors.New("mongo unavailable")

	_, err := svc.Update(context.Background(), alice, alice.ID, ports.UpdateUserInput{FullName: strPtr("x")})
	if err == nil || errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected a wrapped storage error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestUserService_Delete_SelfDenied(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)

	err := svc.Delete(context.Background(), admin, admin.ID)
	if !errors.Is(err, domain.ErrSelfDeletion) {
		t.Fatalf("expected ErrSelfDeletion, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), admin.ID); err != nil {
		t.Fatal("admin must still exist")
	}
}

func TestUserService_Delete_NonAdminDenied(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	mgr := seedUser(t, repo, "mgr", domain.RoleManager)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	if err := svc.Delete(context.Background(), mgr, alice.ID); !errors.Is(err, domain.ErrDeletionForbidden) {
		t.Fatalf("expected ErrDeletionForbidden, got %v", err)
	}
}

func TestUserService_Delete_Success(t *testing.T) {
	repo := newStubUserRepo()
	audit := &stubAuditRepo{}
	svc := NewUserService(repo, audit, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	if err := svc.Delete(context.Background(), admin, alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatal("user must be gone")
	}
	if len(audit.entries) != 1 || audit.entries[0].TargetUsername != "alice" {
		t.Errorf("unexpected audit trail: %+v", audit.entries)
	}

	if err := svc.Delete(context.Background(), admin, alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("second delete: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_AuditFailureIsNonFatal(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, &stubAuditRepo{recordErr: errors.New("mongo unavailable")}, discardLogger)
	admin := seedUser(t, repo, "root", domain.RoleAdmin)
	alice := seedUser(t, repo, "alice", domain.RoleUser)

	if err := svc.Delete(context.Background(), admin, alice.ID); err != nil {
		t.Fatalf("audit failure must not fail the delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List / Bootstrap / Audit
// ---------------------------------------------------------------------------

func TestUserService_List_Pagination(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	for i := 0; i < 5; i++ {
		seedUser(t, repo, fmt.Sprintf("user%d", i), domain.RoleUser)
	}

	res, err := svc.List(context.Background(), ports.ListUsersInput{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 5 || res.TotalPages != 3 || len(res.Items) != 2 || res.Page != 1 {
		t.Errorf("unexpected page: total=%d pages=%d items=%d page=%d", res.Total, res.TotalPages, len(res.Items), res.Page)
	}
}

func TestUserService_List_Limits(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), nil, discardLogger)

	res, _ := svc.List(context.Background(), ports.ListUsersInput{})
	if res.Limit != 20 || res.Page != 1 {
		t.Errorf("expected defaults page=1 limit=20, got page=%d limit=%d", res.Page, res.Limit)
	}

	res, _ = svc.List(context.Background(), ports.ListUsersInput{Limit: 999})
	if res.Limit != 100 {
		t.Errorf("expected limit capped at 100, got %d", res.Limit)
	}
}

func TestUserService_List_PageIsBounded(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	seedUser(t, repo, "alice", domain.RoleUser)

	res, err := svc.List(context.Background(), ports.ListUsersInput{Page: math.MaxInt, Limit: 100})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Page != maxPage || len(res.Items) != 0 || res.Total != 1 {
		t.Errorf("unexpected page: page=%d items=%d total=%d", res.Page, len(res.Items), res.Total)
	}
	f := repo.listed[len(repo.listed)-1]
	if skip := int64(f.Page-1) * int64(f.Limit); skip < 0 || f.Page != maxPage {
		t.Errorf("repository filter page=%d limit=%d gives skip %d", f.Page, f.Limit, skip)
	}
}

func TestUserService_List_FilterByRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	seedUser(t, repo, "alice", domain.RoleUser)
	seedUser(t, repo, "tech", domain.RoleTechnician)

	res, err := svc.List(context.Background(), ports.ListUsersInput{Role: domain.RoleTechnician})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 1 || res.Items[0].Username != "tech" {
		t.Errorf("unexpected result: %+v", res.Items)
	}
}

func TestUserService_Bootstrap_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)
	in := ports.CreateUserInput{Username: "admin", Email: "admin@example.com", Password: "changeme1", Role: domain.RoleAdmin}

	created, err := svc.Bootstrap(context.Background(), in)
	if err != nil || !created {
		t.Fatalf("first bootstrap: created=%v err=%v", created, err)
	}
	created, err = svc.Bootstrap(context.Background(), in)
	if err != nil || created {
		t.Fatalf("second bootstrap must be a no-op: created=%v err=%v", created, err)
	}

	u, _ := repo.FindByUsername(context.Background(), "admin")
	if u.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", u.Role)
	}
}

func TestUserService_Audit_NewestFirst(t *testing.T) {
	audit := &stubAuditRepo{}
	svc := NewUserService(newStubUserRepo(), audit, discardLogger)
	for _, a := range []domain.AuditAction{domain.AuditLogin, domain.AuditUserCreated, domain.AuditUserDeleted} {
		_ = audit.Record(context.Background(), &domain.AuditEntry{Action: a})
	}

	entries, err := svc.Audit(context.Background(), 2)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != domain.AuditUserDeleted {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
