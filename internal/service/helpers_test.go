package service

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

type identityFixture struct {
	svc      IdentityService
	manager  *database.Manager
	users    repository.UserRepository
	profiles repository.ProfileRepository
	activity repository.ActivityLogRepository
}

func newIdentityFixture(t *testing.T) identityFixture {
	t.Helper()
	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), testLogger())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	manager := database.NewManager(db, testLogger())
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	activity := NewActivityService(activityRepo, testLogger())

	svc := NewIdentityService(users, profiles, manager, NewPasswordHasher(bcrypt.MinCost), activity, testLogger())
	return identityFixture{svc: svc, manager: manager, users: users, profiles: profiles, activity: activityRepo}
}
