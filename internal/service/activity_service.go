package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/observability"
	"github.com/noah-isme/internship-api/internal/repository"
)

var (
	errActionRequired = errors.New("action is required")
	errUserRequired   = errors.New("user id is required")
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	UserID     uint
	Action     string
	EntityType string
	EntityID   *uint
	IPAddress  string
	UserAgent  string
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	if entry.UserID == 0 {
		return dto.ActivityResponse{}, errUserRequired
	}
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		return dto.ActivityResponse{}, errActionRequired
	}

	client := ClientInfoFromContext(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = client.IP
	}
	if entry.UserAgent == "" {
		entry.UserAgent = client.UserAgent
	}

	model := models.ActivityLog{
		UserID:     entry.UserID,
		Action:     action,
		EntityType: optionalString(strings.ToLower(entry.EntityType)),
		EntityID:   entry.EntityID,
		IPAddress:  optionalString(entry.IPAddress),
		UserAgent:  optionalString(entry.UserAgent),
		Metadata:   sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
	}
	if req.UserID > 0 {
		filter.UserID = &req.UserID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	return dto.ActivityListResponse{
		Items:      responses,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// recordBestEffort writes entry and swallows failures after logging them. The primary operation
// that produced the entry has already succeeded at this point.
func recordBestEffort(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, entry ActivityEntry) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		observability.ActivityLogFailures().Inc()
		logger.Warn().Err(err).Uint("user_id", entry.UserID).Str("action", entry.Action).Msg("activity log entry dropped")
	}
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return nil
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") {
			if text, ok := value.(string); ok {
				sanitized[key] = maskEmailAddress(text)
				continue
			}
		}
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
