package services

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

var startTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ItineraryItemRequest struct {
	Day       string  `json:"day"`
	StartTime *string `json:"start_time,omitempty"`
	Title     string  `json:"title"`
	Location  *string `json:"location,omitempty"`
}

type ItineraryService interface {
	CreateItem(ctx context.Context, userID, groupID string, req ItineraryItemRequest) (*models.ItineraryItem, error)
	ListItems(ctx context.Context, userID, groupID string) ([]models.ItineraryItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, req ItineraryItemRequest) (*models.ItineraryItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

type itineraryService struct {
	itineraryRepo repository.ItineraryRepository
	groupRepo     repository.GroupRepository
}

func NewItineraryService(itineraryRepo repository.ItineraryRepository, groupRepo repository.GroupRepository) ItineraryService {
	return &itineraryService{itineraryRepo: itineraryRepo, groupRepo: groupRepo}
}

func validateItineraryRequest(req ItineraryItemRequest) (time.Time, error) {
	if req.Title == "" {
		return time.Time{}, apperrors.MissingRequiredField("title")
	}
	if req.Day == "" {
		return time.Time{}, apperrors.MissingRequiredField("day")
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		return time.Time{}, apperrors.InvalidRequest("day must be in YYYY-MM-DD format.")
	}
	if req.StartTime != nil && !startTimePattern.MatchString(*req.StartTime) {
		return time.Time{}, apperrors.InvalidRequest("start_time must be in HH:MM format.")
	}
	return day, nil
}

func (s *itineraryService) CreateItem(ctx context.Context, userID, groupID string, req ItineraryItemRequest) (*models.ItineraryItem, error) {
	day, err := validateItineraryRequest(req)
	if err != nil {
		return nil, err
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	max, err := s.itineraryRepo.MaxPositionForDay(ctx, groupID, req.Day)
	if err != nil {
		return nil, apperrors.DatabaseError("getting itinerary position", err)
	}

	item := &models.ItineraryItem{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Day:       day,
		StartTime: req.StartTime,
		Title:     req.Title,
		Location:  req.Location,
		Position:  max + 1,
		CreatedBy: userID,
	}
	if err := s.itineraryRepo.Create(ctx, item); err != nil {
		return nil, apperrors.DatabaseError("creating itinerary item", err)
	}
	return item, nil
}

func (s *itineraryService) ListItems(ctx context.Context, userID, groupID string) ([]models.ItineraryItem, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	items, err := s.itineraryRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing itinerary", err)
	}
	return items, nil
}

func (s *itineraryService) UpdateItem(ctx context.Context, userID, itemID string, req ItineraryItemRequest) (*models.ItineraryItem, error) {
	item, err := s.itineraryRepo.GetByID(ctx, itemID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Itinerary item")
		}
		return nil, apperrors.DatabaseError("getting itinerary item", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, item.GroupID, userID); err != nil {
		return nil, err
	}

	day, err := validateItineraryRequest(req)
	if err != nil {
		return nil, err
	}

	item.Day = day
	item.StartTime = req.StartTime
	item.Title = req.Title
	item.Location = req.Location

	if err := s.itineraryRepo.Update(ctx, item); err != nil {
		return nil, apperrors.DatabaseError("updating itinerary item", err)
	}
	return item, nil
}

func (s *itineraryService) DeleteItem(ctx context.Context, userID, itemID string) error {
	item, err := s.itineraryRepo.GetByID(ctx, itemID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NotFound("Itinerary item")
		}
		return apperrors.DatabaseError("getting itinerary item", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, item.GroupID, userID); err != nil {
		return err
	}
	if err := s.itineraryRepo.Delete(ctx, itemID); err != nil {
		return apperrors.DatabaseError("deleting itinerary item", err)
	}
	return nil
}
