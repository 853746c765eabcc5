package service

import (
	"context"
	"testing"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[string]*model.User
	tokens map[string]*model.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*model.User),
		tokens: make(map[string]*model.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.users[user.ID.String()] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var users []model.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	clone := *user
	r.users[user.ID.String()] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func TestRegisterDefaultsToSalesRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "jkamau",
		Email:    "jkamau@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleSales, user.Role)

	stored, err := repo.GetByID(context.Background(), user.ID.String())
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "jkamau",
		Email:    "jkamau@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	require.Error(t, err)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "jkamau",
		Email:    "jkamau@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "jkamau",
		Email:    "other@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
}

func TestUpdateProfileKeepsUsernameAndRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "jkamau",
		Email:    "jkamau@example.com",
		Password: "secret123",
		Role:     model.RoleInventory,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), user.ID.String(), UpdateProfileRequest{
		FirstName: "John",
		LastName:  "Kamau",
		Phone:     "+254700000000",
		Email:     "john.kamau@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "John", updated.FirstName)
	require.Equal(t, "john.kamau@example.com", updated.Email)
	require.Equal(t, "jkamau", updated.Username)
	require.Equal(t, model.RoleInventory, updated.Role)
}
