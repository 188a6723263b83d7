package tickets

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zvrva/eventy/internal/domain"
	"github.com/zvrva/eventy/internal/kafka"
	"github.com/zvrva/eventy/internal/repository"
)

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBooked(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FindByQR(ctx context.Context, eventID, userEmail, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, eventID, userEmail, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Cancel(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) MarkUsed(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) StatsByEvent(ctx context.Context, eventID string) (*domain.EventTicketStats, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventTicketStats), args.Error(1)
}

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

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// stubProducer records published events instead of talking to a broker.
// Setting err makes every publish fail.
type stubProducer struct {
	mu     sync.Mutex
	err    error
	events []kafka.TicketEvent
}

func (p *stubProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, value.(kafka.TicketEvent))
	return nil
}

func (p *stubProducer) published() []kafka.TicketEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.TicketEvent(nil), p.events...)
}

func testEvent(seats int) *domain.Event {
	return &domain.Event{
		ID:             "event-1",
		Title:          "Go Conference",
		Date:           "2026-10-01",
		Time:           "18:00",
		Location:       "Main Hall",
		Price:          decimal.NewFromInt(100),
		Capacity:       10,
		AvailableSeats: seats,
		Category:       "tech",
	}
}

func TestTicketService_Book_Success(t *testing.T) {
	mockTickets := &MockTicketRepository{}
	mockEvents := &MockEventRepository{}
	mockUsers := &MockUserRepository{}
	producer := &stubProducer{}

	service := NewTicketService(mockTickets, mockEvents, mockUsers, producer, "notifications")

	ctx := context.Background()
	event := testEvent(10)

	mockEvents.On("GetByID", ctx, "event-1").Return(event, nil).Once()
	mockUsers.On("GetByEmail", ctx, "alice@example.com").Return(nil, domain.ErrUserNotFound).Once()
	mockTickets.On("CreateBooked", ctx, mock.AnythingOfType("*domain.Ticket")).Return(nil).Once()

	ticket, err := service.Book(ctx, BookInput{
		EventID:       "event-1",
		TicketCount:   4,
		Email:         "alice@example.com",
		PaymentMethod: "card_credit",
	})

	assert.NoError(t, err)
	assert.NotNil(t, ticket)
	assert.Equal(t, domain.TicketStatusBooked, ticket.Status)
	assert.Equal(t, domain.PaymentStatusCompleted, ticket.PaymentStatus)
	assert.Equal(t, 4, ticket.TicketCount)
	assert.True(t, ticket.TotalPrice.Equal(decimal.NewFromInt(400)), "total price should be price * count")
	assert.Nil(t, ticket.UserID, "guest booking carries no user id")
	assert.Regexp(t, regexp.MustCompile(`^TKT-\d+-[0-9A-Z]{5}$`), ticket.TicketCode)
	assert.Contains(t, ticket.QRCode, "data:image/png;base64,")
	assert.Equal(t, 6, ticket.Event.AvailableSeats)

	published := producer.published()
	assert.Len(t, published, 1)
	assert.Equal(t, kafka.EventTypeBooked, published[0].Type)
	assert.Equal(t, "Go Conference", published[0].EventTitle)

	mockEvents.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
	mockTickets.AssertExpectations(t)
}

func TestTicketService_Book_PublishFailureDoesNotFailBooking(t *testing.T) {
	mockTickets := &MockTicketRepository{}
	mockEvents := &MockEventRepository{}
	mockUsers := &MockUserRepository{}
	producer := &stubProducer{err: errors.New("broker unreachable")}

	service := NewTicketService(mockTickets, mockEvents, mockUsers, producer, "notifications")

	ctx := context.Background()
	mockEvents.On("GetByID", ctx, "event-1").Return(testEvent(10), nil).Once()
	mockUsers.On("GetByEmail", ctx, "alice@example.com").Return(nil, domain.ErrUserNotFound).Once()
	mockTickets.On("CreateBooked", ctx, mock.AnythingOfType("*domain.Ticket")).Return(nil).Once()

	ticket, err := service.Book(ctx, BookInput{
		EventID:     "event-1",
		TicketCount: 4,
		Email:       "alice@example.com",
	})

	assert.NoError(t, err, "a broker outage must never fail the booking")
	assert.NotNil(t, ticket)
	assert.Equal(t, domain.TicketStatusBooked, ticket.Status)
	assert.Equal(t, 6, ticket.Event.AvailableSeats, "the seats stay reserved")
	assert.Empty(t, producer.published())

	mockTickets.AssertExpectations(t)
}

func TestTicketService_Book_ValidationErrors(t *testing.T) {
	service := NewTicketService(&MockTicketRepository{}, &MockEventRepository{}, &MockUserRepository{}, &stubProducer{}, "notifications")
	ctx := context.Background()

	testCases := []struct {
		name        string
		input       BookInput
		expectedErr string
	}{
		{
			name:        "zero ticket count",
			input:       BookInput{EventID: "event-1", TicketCount: 0, Email: "a@example.com"},
			expectedErr: "ticket count must be at least 1",
		},
		{
			name:        "negative ticket count",
			input:       BookInput{EventID: "event-1", TicketCount: -2, Email: "a@example.com"},
			expectedErr: "ticket count must be at least 1",
		},
		{
			name:        "bad email",
			input:       BookInput{EventID: "event-1", TicketCount: 1, Email: "not-an-email"},
			expectedErr: "invalid email address",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ticket, err := service.Book(ctx, tc.input)
			assert.Error(t, err)
			assert.Nil(t, ticket)
			var invalidArg *domain.InvalidArgumentError
			assert.ErrorAs(t, err, &invalidArg)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestTicketService_Book_InsufficientSeats(t *testing.T) {
	mockTickets := &MockTicketRepository{}
	mockEvents := &MockEventRepository{}
	service := NewTicketService(mockTickets, mockEvents, &MockUserRepository{}, &stubProducer{}, "notifications")

	ctx := context.Background()
	mockEvents.On("GetByID", ctx, "event-1").Return(testEvent(3), nil).Once()

	ticket, err := service.Book(ctx, BookInput{EventID: "event-1", TicketCount: 5, Email: "a@example.com"})

	assert.Nil(t, ticket)
	var insufficient *domain.InsufficientSeatsError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, "only 3 tickets available, requested 5", err.Error())

	mockTickets.AssertNotCalled(t, "CreateBooked")
	mockEvents.AssertExpectations(t)
}

func TestTicketService_Book_EventNotFound(t *testing.T) {
	mockEvents := &MockEventRepository{}
	service := NewTicketService(&MockTicketRepository{}, mockEvents, &MockUserRepository{}, &stubProducer{}, "notifications")

	ctx := context.Background()
	mockEvents.On("GetByID", ctx, "missing").Return(nil, domain.ErrEventNotFound).Once()

	ticket, err := service.Book(ctx, BookInput{EventID: "missing", TicketCount: 1, Email: "a@example.com"})

	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestTicketService_Cancel_Forbidden(t *testing.T) {
	mockTickets := &MockTicketRepository{}
	service := NewTicketService(mockTickets, &MockEventRepository{}, &MockUserRepository{}, &stubProducer{}, "notifications")

	ctx := context.Background()
	owner := "user-1"
	mockTickets.On("GetByID", ctx, "ticket-1").Return(&domain.Ticket{
		ID:     "ticket-1",
		UserID: &owner,
		Status: domain.TicketStatusBooked,
	}, nil).Once()

	ticket, err := service.Cancel(ctx, "ticket-1", "user-2")

	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockTickets.AssertNotCalled(t, "Cancel")
}

func TestTicketService_Cancel_TerminalStates(t *testing.T) {
	testCases := []struct {
		name        string
		status      domain.TicketStatus
		expectedErr string
		wantTicket  bool
	}{
		{name: "already cancelled", status: domain.TicketStatusCancelled, expectedErr: "ticket is already cancelled"},
		{name: "already used", status: domain.TicketStatusUsed, expectedErr: "ticket has already been used", wantTicket: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockTickets := &MockTicketRepository{}
			service := NewTicketService(mockTickets, &MockEventRepository{}, &MockUserRepository{}, &stubProducer{}, "notifications")

			ctx := context.Background()
			mockTickets.On("GetByID", ctx, "ticket-1").Return(&domain.Ticket{ID: "ticket-1", Status: tc.status}, nil).Once()

			ticket, err := service.Cancel(ctx, "ticket-1", "")

			assert.Nil(t, ticket)
			var state *domain.InvalidStateError
			assert.ErrorAs(t, err, &state)
			assert.Equal(t, tc.expectedErr, state.Msg)
			if tc.wantTicket {
				assert.NotNil(t, state.Ticket, "already-used error should carry the ticket for display")
			}
			mockTickets.AssertNotCalled(t, "Cancel")
		})
	}
}

func TestTicketService_Verify_InvalidQR(t *testing.T) {
	service := NewTicketService(&MockTicketRepository{}, &MockEventRepository{}, &MockUserRepository{}, &stubProducer{}, "notifications")

	ticket, err := service.Verify(context.Background(), VerifyInput{QRData: "{{{not json"})

	assert.Nil(t, ticket)
	var invalidArg *domain.InvalidArgumentError
	assert.ErrorAs(t, err, &invalidArg)
	assert.Equal(t, "invalid QR code format", err.Error())
}

func TestTicketService_Verify_TerminalStates(t *testing.T) {
	testCases := []struct {
		name        string
		status      domain.TicketStatus
		expectedErr string
		wantTicket  bool
	}{
		{name: "cancelled ticket", status: domain.TicketStatusCancelled, expectedErr: "ticket has been cancelled"},
		{name: "used ticket", status: domain.TicketStatusUsed, expectedErr: "ticket has already been used", wantTicket: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockTickets := &MockTicketRepository{}
			service := NewTicketService(mockTickets, &MockEventRepository{}, &MockUserRepository{}, &stubProducer{}, "notifications")

			ctx := context.Background()
			mockTickets.On("GetByCode", ctx, "TKT-1-AAAAA").Return(&domain.Ticket{ID: "ticket-1", Status: tc.status}, nil).Once()

			ticket, err := service.Verify(ctx, VerifyInput{TicketCode: "TKT-1-AAAAA"})

			assert.Nil(t, ticket)
			var state *domain.InvalidStateError
			assert.ErrorAs(t, err, &state)
			assert.Equal(t, tc.expectedErr, state.Msg)
			if tc.wantTicket {
				assert.NotNil(t, state.Ticket)
			}
			mockTickets.AssertNotCalled(t, "MarkUsed")
		})
	}
}

func TestTicketService_ListForUser_RequiresIdentity(t *testing.T) {
	service := NewTicketService(&MockTicketRepository{}, &MockEventRepository{}, &MockUserRepository{}, &stubProducer{}, "notifications")

	result, err := service.ListForUser(context.Background(), "", "")

	assert.Nil(t, result)
	var invalidArg *domain.InvalidArgumentError
	assert.ErrorAs(t, err, &invalidArg)
}
