package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/pkg/security"
)

type fakeUserRepo struct {
	repository.UserRepository
	stored  *model.User
	created *model.User
	active  map[uuid.UUID]bool
	deleted []uuid.UUID
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.created = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, _ uuid.UUID) (*model.User, error) {
	if f.stored == nil {
		return nil, repository.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if f.active == nil {
		f.active = make(map[uuid.UUID]bool)
	}
	f.active[id] = active
	return nil
}

func (f *fakeUserRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost))

	u, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Role:     "client",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.True(t, u.Active)
	require.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "super-secret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("super-secret")))
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := NewService(&fakeUserRepo{}, security.NewBcryptHasher(bcrypt.MinCost))

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Role:     "client",
		Password: "short",
	})
	assert.ErrorIs(t, err, security.ErrPasswordTooShort)
}

func TestToggle(t *testing.T) {
	stored := &model.User{Active: true}
	stored.ID = uuid.New()
	repo := &fakeUserRepo{stored: stored}
	svc := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost))

	u, err := svc.Toggle(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.False(t, repo.active[stored.ID])
}

func TestDeleteSelfGuard(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost))

	id := uuid.New()
	session := &model.Session{UserID: id}

	err := svc.Delete(context.Background(), session, id)
	assert.ErrorIs(t, err, ErrSelfDelete)
	assert.Empty(t, repo.deleted)

	other := uuid.New()
	require.NoError(t, svc.Delete(context.Background(), session, other))
	assert.Equal(t, []uuid.UUID{other}, repo.deleted)
}
