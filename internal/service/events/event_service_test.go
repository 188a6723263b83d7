package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zvrva/eventy/internal/domain"
	"github.com/zvrva/eventy/internal/repository"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Event), args.Int(1), args.Error(2)
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func validCreateInput() CreateEventInput {
	return CreateEventInput{
		Title:       "Go Conference",
		Description: "Talks and workshops",
		Date:        "2026-10-01",
		Time:        "18:00",
		Location:    "Main Hall",
		Price:       decimal.NewFromInt(100),
		Capacity:    50,
		Category:    "tech",
	}
}

func TestEventService_Create_Defaults(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil).Once()

	event, err := service.Create(ctx, validCreateInput(), "admin-1")

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 50, event.AvailableSeats, "a new event starts fully available")
	assert.Equal(t, "images/default-event.jpg", event.ImageURL)
	require.NotNil(t, event.CreatedBy)
	assert.Equal(t, "admin-1", *event.CreatedBy)

	mockRepo.AssertExpectations(t)
}

func TestEventService_Create_ValidationErrors(t *testing.T) {
	service := NewEventService(&MockEventRepository{})
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*CreateEventInput)
	}{
		{name: "missing title", mutate: func(in *CreateEventInput) { in.Title = "" }},
		{name: "missing location", mutate: func(in *CreateEventInput) { in.Location = "" }},
		{name: "negative price", mutate: func(in *CreateEventInput) { in.Price = decimal.NewFromInt(-1) }},
		{name: "zero capacity", mutate: func(in *CreateEventInput) { in.Capacity = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)

			event, err := service.Create(ctx, input, "admin-1")

			assert.Nil(t, event)
			var invalidArg *domain.InvalidArgumentError
			assert.ErrorAs(t, err, &invalidArg)
		})
	}
}

func TestEventService_Update_CapacityShiftsAvailableSeats(t *testing.T) {
	testCases := []struct {
		name          string
		capacity      int
		available     int
		newCapacity   int
		wantAvailable int
	}{
		{name: "growing adds seats", capacity: 10, available: 4, newCapacity: 15, wantAvailable: 9},
		{name: "shrinking removes seats", capacity: 10, available: 4, newCapacity: 8, wantAvailable: 2},
		{name: "shrink clamps at zero", capacity: 10, available: 2, newCapacity: 5, wantAvailable: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockEventRepository{}
			service := NewEventService(mockRepo)
			ctx := context.Background()

			mockRepo.On("GetByID", ctx, "event-1").Return(&domain.Event{
				ID:             "event-1",
				Capacity:       tc.capacity,
				AvailableSeats: tc.available,
			}, nil).Once()
			mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Event")).Return(nil).Once()

			updated, err := service.Update(ctx, "event-1", UpdateEventInput{Capacity: &tc.newCapacity}, "")

			require.NoError(t, err)
			assert.Equal(t, tc.newCapacity, updated.Capacity)
			assert.Equal(t, tc.wantAvailable, updated.AvailableSeats)
		})
	}
}

func TestEventService_Update_Forbidden(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo)
	ctx := context.Background()

	owner := "admin-1"
	mockRepo.On("GetByID", ctx, "event-1").Return(&domain.Event{ID: "event-1", CreatedBy: &owner}, nil).Once()

	title := "Renamed"
	updated, err := service.Update(ctx, "event-1", UpdateEventInput{Title: &title}, "admin-2")

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestEventService_List_Paging(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo)
	ctx := context.Background()

	mockRepo.On("List", ctx, repository.EventFilter{Category: "tech", Page: 2, Limit: 10}).
		Return(make([]domain.Event, 10), 25, nil).Once()

	page, err := service.List(ctx, ListInput{Category: "tech", Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Events, 10)
}

func TestEventService_List_DefaultsPageAndLimit(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo)
	ctx := context.Background()

	mockRepo.On("List", ctx, repository.EventFilter{Page: 1, Limit: 10}).
		Return([]domain.Event{}, 0, nil).Once()

	page, err := service.List(ctx, ListInput{Page: 0, Limit: -5})

	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, page.TotalPages)
}

func TestEventService_Delete_Forbidden(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo)
	ctx := context.Background()

	owner := "admin-1"
	mockRepo.On("GetByID", ctx, "event-1").Return(&domain.Event{ID: "event-1", CreatedBy: &owner}, nil).Once()

	err := service.Delete(ctx, "event-1", "admin-2")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockRepo.AssertNotCalled(t, "Delete")
}
