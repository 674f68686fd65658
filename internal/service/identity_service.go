package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/repository"
)

var (
	// ErrEmailTaken is returned when the e-mail is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrProfileRoleMismatch is returned when a profile does not belong to the user's role.
	ErrProfileRoleMismatch = errors.New("profile does not match user role")
	// ErrInvalidRole is returned for users without a recognised role.
	ErrInvalidRole = errors.New("invalid user role")
	// ErrInvalidUpdate is returned when an updatable field carries a value of the wrong type.
	ErrInvalidUpdate = errors.New("invalid update value")
	// ErrUserNotFound is returned by writes that target a user id with no row.
	ErrUserNotFound = errors.New("user not found")
)

// Transactor runs fn inside a transaction bound to ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdentityService loads, authenticates and maintains user identities.
type IdentityService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Create(ctx context.Context, user *models.User, password string, profile Profile) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	ChangePassword(ctx context.Context, id uint, newPassword string) error
	CheckPassword(ctx context.Context, id uint, password string) (bool, error)
	LogActivity(ctx context.Context, entry ActivityEntry) error
	GetProfile(ctx context.Context, user *models.User) (Profile, error)
}

type identityService struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	tx        Transactor
	hasher    *PasswordHasher
	activity  ActivityRecorder
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewIdentityService wires the identity service.
func NewIdentityService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	tx Transactor,
	hasher *PasswordHasher,
	activity ActivityRecorder,
	logger zerolog.Logger,
) IdentityService {
	return &identityService{
		users:     users,
		profiles:  profiles,
		tx:        tx,
		hasher:    hasher,
		activity:  activity,
		logger:    logger.With().Str("component", "identity_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/internship-api/internal/service/identity"),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// NormalizeEmail canonicalises an e-mail address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *identityService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *identityService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user when the e-mail belongs to an active account and the password
// verifies. Every other outcome is (nil, nil) and indistinguishable to the caller.
func (s *identityService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	spanCtx, span := s.tracer.Start(ctx, "identity.authenticate")
	defer span.End()

	user, err := s.GetByEmail(spanCtx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		observability.LoginAttempts().WithLabelValues(observability.LoginErrored).Inc()
		return nil, err
	}
	if user == nil {
		s.hasher.VerifyDummy(password)
		observability.LoginAttempts().WithLabelValues(observability.LoginRejected).Inc()
		return nil, nil
	}

	verified := s.hasher.Verify(user.PasswordHash, password)
	if !verified || !user.IsActive {
		observability.LoginAttempts().WithLabelValues(observability.LoginRejected).Inc()
		s.logger.Debug().Uint("user_id", user.ID).Bool("active", user.IsActive).Msg("login rejected")
		return nil, nil
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(spanCtx, user.ID, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "last login update failed")
		observability.LoginAttempts().WithLabelValues(observability.LoginErrored).Inc()
		return nil, err
	}
	lastLogin := now
	if user.LastLogin != nil && user.LastLogin.After(now) {
		lastLogin = *user.LastLogin
	}
	user.LastLogin = &lastLogin

	span.SetAttributes(attribute.Int64("user.id", int64(user.ID)), attribute.String("user.role", user.Role.String()))
	observability.LoginAttempts().WithLabelValues(observability.LoginSucceeded).Inc()
	recordBestEffort(spanCtx, s.activity, s.logger, ActivityEntry{UserID: user.ID, Action: "login"})

	return user, nil
}

// Create stores user with a hash of password and, when given, the profile for its role. Both rows
// are written in one transaction. The generated id is assigned back onto user.
func (s *identityService) Create(ctx context.Context, user *models.User, password string, profile Profile) error {
	if user == nil {
		return errors.New("user is required")
	}
	if !user.Role.Valid() {
		return ErrInvalidRole
	}
	if profile != nil && profile.Role() != user.Role {
		return ErrProfileRoleMismatch
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	spanCtx, span := s.tracer.Start(ctx, "identity.create", trace.WithAttributes(attribute.String("user.role", user.Role.String())))
	defer span.End()

	user.ID = 0
	user.Email = NormalizeEmail(user.Email)
	user.FullName = cleanText(s.sanitizer, user.FullName)
	user.Phone = strings.TrimSpace(user.Phone)
	user.PasswordHash = hash
	user.IsActive = true

	err = s.tx.WithinTransaction(spanCtx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}
		return s.createProfile(txCtx, user.ID, profile)
	})
	if err != nil {
		user.ID = 0
		if !errors.Is(err, ErrEmailTaken) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create failed")
		}
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role.String()).Msg("user created")
	return nil
}

func (s *identityService) createProfile(ctx context.Context, userID uint, profile Profile) error {
	switch p := profile.(type) {
	case nil:
		return nil
	case StudentProfile:
		p.ID, p.UserID = 0, userID
		return s.profiles.CreateStudent(ctx, &p.Student)
	case *StudentProfile:
		p.UserID = userID
		return s.profiles.CreateStudent(ctx, &p.Student)
	case HODProfile:
		p.ID, p.UserID = 0, userID
		return s.profiles.CreateHOD(ctx, &p.HOD)
	case *HODProfile:
		p.UserID = userID
		return s.profiles.CreateHOD(ctx, &p.HOD)
	case SupervisorProfile:
		p.ID, p.UserID = 0, userID
		return s.profiles.CreateSupervisor(ctx, &p.OrganizationSupervisor)
	case *SupervisorProfile:
		p.UserID = userID
		return s.profiles.CreateSupervisor(ctx, &p.OrganizationSupervisor)
	default:
		return fmt.Errorf("unsupported profile type %T", profile)
	}
}

// Update applies the whitelisted keys full_name, phone and is_active. Other keys are ignored and an
// update with nothing to apply does not touch storage.
func (s *identityService) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	applied := make(map[string]interface{}, 3)
	for key, value := range fields {
		switch key {
		case "full_name", "phone":
			text, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrInvalidUpdate, key)
			}
			text = strings.TrimSpace(text)
			if key == "full_name" {
				text = cleanText(s.sanitizer, text)
				if text == "" {
					return fmt.Errorf("%w: full_name must not be empty", ErrInvalidUpdate)
				}
			}
			applied[key] = text
		case "is_active":
			active, ok := value.(bool)
			if !ok {
				return fmt.Errorf("%w: is_active must be a boolean", ErrInvalidUpdate)
			}
			applied[key] = active
		}
	}
	if len(applied) == 0 {
		return nil
	}

	if _, err := s.users.UpdateFields(ctx, id, applied); err != nil {
		return err
	}
	if active, ok := applied["is_active"].(bool); ok && !active {
		s.logger.Info().Uint("user_id", id).Msg("user deactivated")
	}
	return nil
}

// ChangePassword overwrites the stored hash. Callers are responsible for confirming the old password.
func (s *identityService) ChangePassword(ctx context.Context, id uint, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	affected, err := s.users.UpdatePasswordHash(ctx, id, hash)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	recordBestEffort(ctx, s.activity, s.logger, ActivityEntry{UserID: id, Action: "password.changed"})
	return nil
}

func (s *identityService) CheckPassword(ctx context.Context, id uint, password string) (bool, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if user == nil {
		s.hasher.VerifyDummy(password)
		return false, nil
	}
	return s.hasher.Verify(user.PasswordHash, password), nil
}

func (s *identityService) LogActivity(ctx context.Context, entry ActivityEntry) error {
	if s.activity == nil {
		return errors.New("activity recorder not configured")
	}
	_, err := s.activity.Record(ctx, entry)
	return err
}

// GetProfile loads the profile row matching the user's role. Administrators, and users whose
// profile row is missing, yield (nil, nil).
func (s *identityService) GetProfile(ctx context.Context, user *models.User) (Profile, error) {
	if user == nil {
		return nil, nil
	}

	var (
		profile Profile
		err     error
	)
	switch user.Role {
	case models.RoleStudent:
		var row models.Student
		if row, err = s.profiles.FindStudent(ctx, user.ID); err == nil {
			profile = StudentProfile{Student: row}
		}
	case models.RoleHOD:
		var row models.HOD
		if row, err = s.profiles.FindHOD(ctx, user.ID); err == nil {
			profile = HODProfile{HOD: row}
		}
	case models.RoleSupervisor:
		var row models.OrganizationSupervisor
		if row, err = s.profiles.FindSupervisor(ctx, user.ID); err == nil {
			profile = SupervisorProfile{OrganizationSupervisor: row}
		}
	default:
		return nil, nil
	}

	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}
