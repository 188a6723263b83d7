package tickets

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zvrva/eventy/internal/domain"
	"github.com/zvrva/eventy/internal/kafka"
	"github.com/zvrva/eventy/internal/qr"
	"github.com/zvrva/eventy/internal/repository"
	"github.com/zvrva/eventy/monitoring"
)

type TicketUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Ticket, error)
	Get(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error)
	Cancel(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error)
	Verify(ctx context.Context, input VerifyInput) (*domain.Ticket, error)
	ListForUser(ctx context.Context, userID, email string) ([]domain.Ticket, error)
	Stats(ctx context.Context, eventID string) (*domain.EventTicketStats, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type TicketService struct {
	tickets            repository.TicketRepository
	events             repository.EventRepository
	users              repository.UserRepository
	producer           Producer
	notificationsTopic string
}

type BookInput struct {
	EventID       string `json:"eventId"`
	TicketCount   int    `json:"ticketCount"`
	Email         string `json:"userEmail"`
	PaymentMethod string `json:"paymentMethod"`

	// Set from the auth context, never from the request body.
	UserID string `json:"-"`
}

type VerifyInput struct {
	TicketCode string `json:"ticketId"`
	QRData     string `json:"qrData"`
}

func NewTicketService(
	tickets repository.TicketRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	producer Producer,
	notificationsTopic string,
) *TicketService {
	return &TicketService{
		tickets:            tickets,
		events:             events,
		users:              users,
		producer:           producer,
		notificationsTopic: notificationsTopic,
	}
}

// Book reserves seats on an event and persists the ticket. The seat
// decrement and the ticket insert commit together; the confirmation email
// is published as a broker event afterwards and never fails the booking.
func (s *TicketService) Book(ctx context.Context, input BookInput) (*domain.Ticket, error) {
	if input.TicketCount < 1 {
		monitoring.TrackBooking("invalid_input")
		return nil, domain.InvalidArgument("ticket count must be at least 1")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		monitoring.TrackBooking("invalid_input")
		return nil, domain.InvalidArgument("invalid email address: %s", input.Email)
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "card_credit"
	}

	event, err := s.events.GetByID(ctx, input.EventID)
	if err != nil {
		monitoring.TrackBooking("event_not_found")
		return nil, err
	}
	if event.AvailableSeats < input.TicketCount {
		monitoring.TrackBooking("insufficient_seats")
		return nil, &domain.InsufficientSeatsError{Available: event.AvailableSeats, Requested: input.TicketCount}
	}

	purchaser, err := s.resolvePurchaser(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, err
	}

	code, err := newTicketCode()
	if err != nil {
		return nil, err
	}
	bookedAt := time.Now()

	// QR rendering happens before anything is persisted: a ticket without
	// a scannable code is useless, so a failure here aborts the booking.
	qrCode, err := qr.Encode(qr.NewPayload(event.ID, event.Title, input.Email, input.TicketCount, code, bookedAt))
	if err != nil {
		monitoring.TrackBooking("qr_failure")
		return nil, &domain.DependencyError{Op: "generate qr code", Err: err}
	}

	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		TicketCode:    code,
		EventID:       event.ID,
		UserEmail:     input.Email,
		TicketCount:   input.TicketCount,
		TotalPrice:    event.Price.Mul(decimal.NewFromInt(int64(input.TicketCount))),
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: domain.PaymentStatusCompleted,
		Status:        domain.TicketStatusBooked,
		QRCode:        qrCode,
	}
	if purchaser != nil {
		ticket.UserID = &purchaser.ID
	}

	if err := s.tickets.CreateBooked(ctx, ticket); err != nil {
		var insufficient *domain.InsufficientSeatsError
		switch {
		case errors.As(err, &insufficient):
			monitoring.TrackBooking("insufficient_seats")
		case errors.Is(err, domain.ErrEventNotFound):
			monitoring.TrackBooking("event_not_found")
		default:
			monitoring.TrackBooking("storage_error")
		}
		return nil, err
	}
	monitoring.TrackBooking("success")

	event.AvailableSeats -= input.TicketCount
	ticket.Event = event
	ticket.User = purchaser

	s.publish(ctx, kafka.EventTypeBooked, ticket)
	return ticket, nil
}

// resolvePurchaser attaches an existing identity to the booking. Guests stay
// guests: no placeholder account is created for an unknown email.
func (s *TicketService) resolvePurchaser(ctx context.Context, userID, email string) (*domain.User, error) {
	if userID != "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *TicketService) Get(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if requestingUserID != "" && ticket.UserID != nil && *ticket.UserID != requestingUserID {
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

func (s *TicketService) Cancel(ctx context.Context, ticketID, requestingUserID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		monitoring.TrackCancellation("not_found")
		return nil, err
	}
	if requestingUserID != "" && ticket.UserID != nil && *ticket.UserID != requestingUserID {
		monitoring.TrackCancellation("forbidden")
		return nil, domain.ErrForbidden
	}
	if ticket.Status == domain.TicketStatusCancelled {
		monitoring.TrackCancellation("already_cancelled")
		return nil, &domain.InvalidStateError{Msg: "ticket is already cancelled"}
	}
	if ticket.Status == domain.TicketStatusUsed {
		monitoring.TrackCancellation("already_used")
		return nil, &domain.InvalidStateError{Msg: "ticket has already been used", Ticket: ticket}
	}

	updated, err := s.tickets.Cancel(ctx, ticket.ID)
	if err != nil {
		monitoring.TrackCancellation("storage_error")
		return nil, err
	}
	monitoring.TrackCancellation("success")

	// The cancel just restored the seats, so the event read before it is
	// stale. Re-read for the response; fall back to the stale snapshot if
	// the read fails.
	updated.Event = ticket.Event
	if event, err := s.events.GetByID(ctx, updated.EventID); err == nil {
		updated.Event = event
	}
	s.publish(ctx, kafka.EventTypeCancelled, updated)
	return updated, nil
}

func (s *TicketService) Verify(ctx context.Context, input VerifyInput) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	var err error

	switch {
	case input.TicketCode != "":
		ticket, err = s.tickets.GetByCode(ctx, input.TicketCode)
	case input.QRData != "":
		payload, decodeErr := qr.Decode(input.QRData)
		if decodeErr != nil {
			monitoring.TrackVerification("invalid_qr")
			return nil, domain.InvalidArgument("invalid QR code format")
		}
		ticket, err = s.tickets.FindByQR(ctx, payload.EventID, payload.UserEmail, payload.TicketCode)
	default:
		monitoring.TrackVerification("invalid_input")
		return nil, domain.InvalidArgument("ticketId or qrData is required")
	}
	if err != nil {
		monitoring.TrackVerification("not_found")
		return nil, err
	}

	if ticket.Status == domain.TicketStatusCancelled {
		monitoring.TrackVerification("cancelled")
		return nil, &domain.InvalidStateError{Msg: "ticket has been cancelled"}
	}
	if ticket.Status == domain.TicketStatusUsed {
		monitoring.TrackVerification("already_used")
		return nil, &domain.InvalidStateError{Msg: "ticket has already been used", Ticket: ticket}
	}

	updated, err := s.tickets.MarkUsed(ctx, ticket.ID)
	if err != nil {
		monitoring.TrackVerification("storage_error")
		return nil, err
	}
	monitoring.TrackVerification("success")

	updated.Event = ticket.Event
	return updated, nil
}

func (s *TicketService) ListForUser(ctx context.Context, userID, email string) ([]domain.Ticket, error) {
	if userID != "" {
		return s.tickets.ListByUser(ctx, userID)
	}
	if email != "" {
		return s.tickets.ListByEmail(ctx, email)
	}
	return nil, domain.InvalidArgument("user authentication required or email parameter needed")
}

func (s *TicketService) Stats(ctx context.Context, eventID string) (*domain.EventTicketStats, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.tickets.StatsByEvent(ctx, eventID)
}

func (s *TicketService) publish(ctx context.Context, eventType string, ticket *domain.Ticket) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}

	event := kafka.TicketEvent{
		Type:        eventType,
		TicketID:    ticket.ID,
		TicketCode:  ticket.TicketCode,
		EventID:     ticket.EventID,
		UserEmail:   ticket.UserEmail,
		TicketCount: ticket.TicketCount,
		TotalPrice:  ticket.TotalPrice.StringFixed(2),
		Payment:     ticket.PaymentMethod,
		QRCode:      ticket.QRCode,
		BookedAt:    ticket.CreatedAt,
	}
	if ticket.Event != nil {
		event.EventTitle = ticket.Event.Title
		event.EventDate = ticket.Event.Date
		event.EventTime = ticket.Event.Time
		event.Location = ticket.Event.Location
		event.Category = ticket.Event.Category
	}

	if err := s.producer.Publish(ctx, s.notificationsTopic, ticket.TicketCode, event); err != nil {
		monitoring.TrackNotificationFailure()
		log.Printf("WARNING: failed to publish %s event for ticket %s: %v", eventType, ticket.TicketCode, err)
	}
}

var _ TicketUseCase = (*TicketService)(nil)
