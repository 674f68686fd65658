package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/repository"
)

const defaultNotificationType = "info"

// ErrNotificationEmpty is returned when the title or message is blank once markup is stripped.
var ErrNotificationEmpty = errors.New("notification empty after sanitization")

// NotificationService stores notifications and manages their read state.
type NotificationService interface {
	Create(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	List(ctx context.Context, userID uint, unreadOnly bool) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (bool, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo repository.NotificationRepository, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/internship-api/internal/service/notification"),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *notificationService) Create(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, err
	}

	title := cleanText(s.sanitizer, payload.Title)
	message := cleanText(s.sanitizer, payload.Message)
	if title == "" || message == "" {
		return dto.NotificationResponse{}, ErrNotificationEmpty
	}

	kind := strings.TrimSpace(payload.Type)
	if kind == "" {
		kind = defaultNotificationType
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.create", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(payload.UserID)),
		attribute.String("notification.type", kind),
	))
	defer span.End()

	model := models.Notification{
		UserID:  payload.UserID,
		Title:   title,
		Message: message,
		Type:    kind,
		Link:    strings.TrimSpace(payload.Link),
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	observability.NotificationsCreated().WithLabelValues(kind).Inc()
	return dto.NewNotificationResponse(model), nil
}

func (s *notificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]dto.NotificationResponse, error) {
	if userID == 0 {
		return nil, errUserRequired
	}

	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

// MarkRead reports whether the notification changed state. Ids that are missing, already read or
// owned by another user are left untouched and yield false without an error.
func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	spanCtx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(userID)),
		attribute.Int64("notification.id", int64(id)),
	))
	defer span.End()

	affected, err := s.repo.MarkRead(spanCtx, id, userID, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if affected == 0 {
		s.logger.Debug().Uint("notification_id", id).Uint("user_id", userID).Msg("mark read matched no unread notification")
	}
	return affected > 0, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
