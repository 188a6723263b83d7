package events

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zvrva/eventy/internal/domain"
	"github.com/zvrva/eventy/internal/repository"
)

const defaultImageURL = "images/default-event.jpg"

type EventUseCase interface {
	Create(ctx context.Context, input CreateEventInput, createdBy string) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, input ListInput) (*EventPage, error)
	Update(ctx context.Context, id string, input UpdateEventInput, requestingUserID string) (*domain.Event, error)
	Delete(ctx context.Context, id, requestingUserID string) error
}

type EventService struct {
	repo repository.EventRepository
}

type CreateEventInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Location    string          `json:"location"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
}

type UpdateEventInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	Time        *string          `json:"time"`
	Location    *string          `json:"location"`
	Price       *decimal.Decimal `json:"price"`
	Capacity    *int             `json:"capacity"`
	ImageURL    *string          `json:"imageUrl"`
	Category    *string          `json:"category"`
}

type ListInput struct {
	Category string
	Search   string
	SortBy   string
	Page     int
	Limit    int
}

type EventPage struct {
	Events      []domain.Event `json:"events"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

func NewEventService(repo repository.EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput, createdBy string) (*domain.Event, error) {
	if input.Title == "" || input.Description == "" || input.Date == "" ||
		input.Time == "" || input.Location == "" || input.Category == "" {
		return nil, domain.InvalidArgument("title, description, date, time, location and category are required")
	}
	if input.Price.IsNegative() {
		return nil, domain.InvalidArgument("price must not be negative")
	}
	if input.Capacity < 1 {
		return nil, domain.InvalidArgument("capacity must be at least 1")
	}

	event := &domain.Event{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Description:    input.Description,
		Date:           input.Date,
		Time:           input.Time,
		Location:       input.Location,
		Price:          input.Price,
		Capacity:       input.Capacity,
		AvailableSeats: input.Capacity,
		ImageURL:       input.ImageURL,
		Category:       input.Category,
	}
	if event.ImageURL == "" {
		event.ImageURL = defaultImageURL
	}
	if createdBy != "" {
		event.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EventService) List(ctx context.Context, input ListInput) (*EventPage, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit <= 0 {
		input.Limit = 10
	}

	events, total, err := s.repo.List(ctx, repository.EventFilter{
		Category: input.Category,
		Search:   input.Search,
		SortBy:   input.SortBy,
		Page:     input.Page,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &EventPage{
		Events:      events,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(input.Limit))),
		CurrentPage: input.Page,
	}, nil
}

// Update applies a partial edit. Growing or shrinking capacity shifts
// availableSeats by the same delta, clamped to the 0..capacity range.
func (s *EventService) Update(ctx context.Context, id string, input UpdateEventInput, requestingUserID string) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requestingUserID != "" && event.CreatedBy != nil && *event.CreatedBy != requestingUserID {
		return nil, domain.ErrForbidden
	}

	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.Time != nil {
		event.Time = *input.Time
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, domain.InvalidArgument("price must not be negative")
		}
		event.Price = *input.Price
	}
	if input.Capacity != nil {
		if *input.Capacity < 1 {
			return nil, domain.InvalidArgument("capacity must be at least 1")
		}
		delta := *input.Capacity - event.Capacity
		event.Capacity = *input.Capacity
		event.AvailableSeats = clamp(event.AvailableSeats+delta, 0, event.Capacity)
	}
	if input.ImageURL != nil {
		event.ImageURL = *input.ImageURL
	}
	if input.Category != nil {
		event.Category = *input.Category
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id, requestingUserID string) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if requestingUserID != "" && event.CreatedBy != nil && *event.CreatedBy != requestingUserID {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ EventUseCase = (*EventService)(nil)
