package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/eventy/internal/domain"
)

type TicketRepository interface {
	// CreateBooked persists a new ticket and decrements the event's seat
	// counter in one transaction. The decrement is conditional so two
	// concurrent bookings can never oversell the event.
	CreateBooked(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	FindByQR(ctx context.Context, eventID, userEmail, code string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error)
	// Cancel flips a booked ticket to cancelled and restores its seats to
	// the event, both in one transaction. A ticket that is not in the
	// booked state is left untouched.
	Cancel(ctx context.Context, id string) (*domain.Ticket, error)
	// MarkUsed flips a booked ticket to used. Seats are not affected.
	MarkUsed(ctx context.Context, id string) (*domain.Ticket, error)
	StatsByEvent(ctx context.Context, eventID string) (*domain.EventTicketStats, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `t.id, t.ticket_code, t.event_id, t.user_id, t.user_email, t.ticket_count, t.total_price, t.payment_method, t.payment_status, t.status, t.qr_code, t.created_at, t.updated_at`

func (r *PGTicketRepository) CreateBooked(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE events SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`,
		ticket.EventID, ticket.TicketCount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var available int
		if err := tx.QueryRow(ctx, `SELECT available_seats FROM events WHERE id=$1`, ticket.EventID).Scan(&available); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEventNotFound
			}
			return err
		}
		return &domain.InsufficientSeatsError{Available: available, Requested: ticket.TicketCount}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO tickets (id, ticket_code, event_id, user_id, user_email, ticket_count, total_price, payment_method, payment_status, status, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		ticket.ID, ticket.TicketCode, ticket.EventID, ticket.UserID, ticket.UserEmail,
		ticket.TicketCount, ticket.TotalPrice, ticket.PaymentMethod, ticket.PaymentStatus,
		ticket.Status, ticket.QRCode).
		Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.getOne(ctx, `WHERE t.id=$1`, id)
}

func (r *PGTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.getOne(ctx, `WHERE t.ticket_code=$1`, code)
}

func (r *PGTicketRepository) FindByQR(ctx context.Context, eventID, userEmail, code string) (*domain.Ticket, error) {
	return r.getOne(ctx, `WHERE t.event_id=$1 AND t.user_email=$2 AND t.ticket_code=$3`, eventID, userEmail, code)
}

func (r *PGTicketRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+`, `+joinedEventColumns+` FROM tickets t JOIN events e ON e.id = t.event_id `+where, args...)
	ticket, err := scanTicketWithEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *PGTicketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.list(ctx, `WHERE t.user_id=$1`, userID)
}

func (r *PGTicketRepository) ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	return r.list(ctx, `WHERE t.user_email=$1`, email)
}

func (r *PGTicketRepository) list(ctx context.Context, where string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+`, `+joinedEventColumns+` FROM tickets t JOIN events e ON e.id = t.event_id `+where+` ORDER BY t.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicketWithEvent(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) Cancel(ctx context.Context, id string) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE tickets t SET status=$2, payment_status=$3, updated_at=now() WHERE t.id=$1 AND t.status=$4
		RETURNING `+ticketColumns,
		id, domain.TicketStatusCancelled, domain.PaymentStatusCancelled, domain.TicketStatusBooked)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionConflict(ctx, tx, id, "ticket is already cancelled")
		}
		return nil, err
	}

	// Restore exactly what the booking took, clamped at capacity.
	if _, err := tx.Exec(ctx, `UPDATE events SET available_seats = LEAST(capacity, available_seats + $2), updated_at = now() WHERE id=$1`,
		ticket.EventID, ticket.TicketCount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *PGTicketRepository) MarkUsed(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `UPDATE tickets t SET status=$2, updated_at=now() WHERE t.id=$1 AND t.status=$3
		RETURNING `+ticketColumns,
		id, domain.TicketStatusUsed, domain.TicketStatusBooked)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionConflict(ctx, r.db, id, "ticket has been cancelled")
		}
		return nil, err
	}
	return ticket, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// transitionConflict names the state that beat a conditional status update.
// A zero-row UPDATE means another request moved the ticket to a terminal
// state first, so the status is re-read to report which one.
func (r *PGTicketRepository) transitionConflict(ctx context.Context, q rowQuerier, id, cancelledMsg string) error {
	var status domain.TicketStatus
	if err := q.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTicketNotFound
		}
		return err
	}
	return conflictError(status, cancelledMsg)
}

// conflictError picks the message for a lost status transition. The wording
// for a cancelled ticket differs between cancelling again and checking in.
func conflictError(status domain.TicketStatus, cancelledMsg string) error {
	switch status {
	case domain.TicketStatusCancelled:
		return &domain.InvalidStateError{Msg: cancelledMsg}
	case domain.TicketStatusUsed:
		return &domain.InvalidStateError{Msg: "ticket has already been used"}
	default:
		return &domain.InvalidStateError{Msg: "ticket is not booked"}
	}
}

func (r *PGTicketRepository) StatsByEvent(ctx context.Context, eventID string) (*domain.EventTicketStats, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COALESCE(SUM(ticket_count), 0), COALESCE(SUM(total_price), 0)
		FROM tickets WHERE event_id=$1 GROUP BY status`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.EventTicketStats{ByStatus: make([]domain.StatusStats, 0)}
	for rows.Next() {
		var s domain.StatusStats
		if err := rows.Scan(&s.Status, &s.Tickets, &s.Revenue); err != nil {
			return nil, err
		}
		stats.ByStatus = append(stats.ByStatus, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(ticket_count), 0), COALESCE(SUM(total_price), 0), COUNT(*)
		FROM tickets WHERE event_id=$1`, eventID).
		Scan(&stats.Totals.Tickets, &stats.Totals.Revenue, &stats.Totals.Bookings); err != nil {
		return nil, err
	}
	return stats, nil
}

const joinedEventColumns = `e.id, e.title, e.description, e.date, e.time, e.location, e.price, e.capacity, e.available_seats, e.image_url, e.category, e.created_by, e.created_at, e.updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.TicketCode, &t.EventID, &t.UserID, &t.UserEmail,
		&t.TicketCount, &t.TotalPrice, &t.PaymentMethod, &t.PaymentStatus,
		&t.Status, &t.QRCode, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTicketWithEvent(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var e domain.Event
	if err := row.Scan(&t.ID, &t.TicketCode, &t.EventID, &t.UserID, &t.UserEmail,
		&t.TicketCount, &t.TotalPrice, &t.PaymentMethod, &t.PaymentStatus,
		&t.Status, &t.QRCode, &t.CreatedAt, &t.UpdatedAt,
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Price, &e.Capacity, &e.AvailableSeats, &e.ImageURL, &e.Category,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	t.Event = &e
	return &t, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
