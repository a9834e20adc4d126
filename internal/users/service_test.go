package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/security"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.Sector{},
		&models.User{},
	))

	svc, err := NewService(NewRepository(client.DB()), config.PasswordConfig{})
	require.NoError(t, err)
	return svc, client
}

func TestCreateUserHashesPasswordAndLowercasesEmail(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Name:     "Ana Executor",
		Email:    "Ana.Executor@Example.COM",
		Password: "correct-horse",
		Role:     enums.UserRoleExecutor,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.executor@example.com", created.Email)
	assert.True(t, created.IsActive)

	var row models.User
	require.NoError(t, client.DB().First(&row, "id = ?", created.ID).Error)
	require.NotEqual(t, "correct-horse", row.PasswordHash)

	ok, err := security.VerifyPassword("correct-horse", row.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := CreateUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "correct-horse",
		Role:     enums.UserRoleExecutor,
	}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateUserShortPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "short",
		Role:     enums.UserRoleExecutor,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "correct-horse",
		Role:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID, created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "cannot delete your own account", typed.Message())
}

func TestDeleteUserRemovesOther(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, CreateUserInput{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "correct-horse",
		Role:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	target, err := svc.Create(ctx, CreateUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "correct-horse",
		Role:     enums.UserRoleExecutor,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin.ID, target.ID))

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).Where("id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateUserPartialFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "correct-horse",
		Role:     enums.UserRoleExecutor,
	})
	require.NoError(t, err)

	inactive := false
	role := enums.UserRoleAdmin
	updated, err := svc.Update(ctx, created.ID, UpdateUserInput{
		Role:     &role,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", updated.Role)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Ana", updated.Name)

	_, err = svc.Update(ctx, uuid.New(), UpdateUserInput{Role: &role})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
