package bootstrap

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/service"
)

type harness struct {
	identity service.IdentityService
	users    repository.UserRepository
	hasher   *service.PasswordHasher
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	identity := service.NewIdentityService(users, repository.NewProfileRepository(db), database.NewManager(db, logger), hasher, activity, logger)
	return harness{identity: identity, users: users, hasher: hasher}
}

func TestCreateAdminStoresActiveAdministrator(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, err := CreateAdmin(ctx, h.identity, h.users, h.hasher, AdminInput{
		Email:    " Root@Baze.edu.ng ",
		FullName: "Root Admin",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "root@baze.edu.ng", user.Email)

	authenticated, err := h.identity.Authenticate(ctx, "root@baze.edu.ng", "secret123")
	require.NoError(t, err)
	require.NotNil(t, authenticated)
	require.Equal(t, models.RoleAdmin, authenticated.Role)
	require.True(t, authenticated.IsActive)

	profile, err := h.identity.GetProfile(ctx, authenticated)
	require.NoError(t, err)
	require.Nil(t, profile)
}

func TestCreateAdminRejectsExistingEmailAndWeakPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := CreateAdmin(ctx, h.identity, h.users, h.hasher, AdminInput{Email: "a@x.com", FullName: "A", Password: "12345"})
	require.ErrorIs(t, err, service.ErrPasswordTooShort)

	_, err = CreateAdmin(ctx, h.identity, h.users, h.hasher, AdminInput{Email: "a@x.com", FullName: "A", Password: "123456"})
	require.NoError(t, err)

	_, err = CreateAdmin(ctx, h.identity, h.users, h.hasher, AdminInput{Email: "A@X.COM", FullName: "B", Password: "abcdef"})
	require.ErrorIs(t, err, ErrUserExists)

	_, err = CreateAdmin(ctx, h.identity, h.users, h.hasher, AdminInput{Email: "b@x.com", FullName: "  ", Password: "abcdef"})
	require.Error(t, err)
}
