package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/eventy/internal/domain"
)

type EventFilter struct {
	Category string
	Search   string
	SortBy   string
	Page     int
	Limit    int
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, int, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
}

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

const eventColumns = `id, title, description, date, time, location, price, capacity, available_seats, image_url, category, created_by, created_at, updated_at`

func (r *PGEventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.QueryRow(ctx, `INSERT INTO events (id, title, description, date, time, location, price, capacity, available_seats, image_url, category, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		event.ID, event.Title, event.Description, event.Date, event.Time, event.Location,
		event.Price, event.Capacity, event.AvailableSeats, event.ImageURL, event.Category, event.CreatedBy).
		Scan(&event.CreatedAt, &event.UpdatedAt)
}

func (r *PGEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// List applies the category filter and the free-text search (ORed across
// title, description and location), then paginates. It returns the page of
// events plus the total match count.
func (r *PGEventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, int, error) {
	where, args := buildEventWhere(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "ORDER BY created_at DESC"
	switch filter.SortBy {
	case "price":
		order = "ORDER BY price ASC"
	case "date":
		order = "ORDER BY date ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT %s FROM events%s %s LIMIT $%d OFFSET $%d`,
		eventColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}
	return events, total, rows.Err()
}

func (r *PGEventRepository) Update(ctx context.Context, event *domain.Event) error {
	row := r.db.QueryRow(ctx, `UPDATE events SET title=$2, description=$3, date=$4, time=$5, location=$6, price=$7, capacity=$8, available_seats=$9, image_url=$10, category=$11, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		event.ID, event.Title, event.Description, event.Date, event.Time, event.Location,
		event.Price, event.Capacity, event.AvailableSeats, event.ImageURL, event.Category)
	if err := row.Scan(&event.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}
	return nil
}

func (r *PGEventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func buildEventWhere(filter EventFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Category != "" && !strings.EqualFold(filter.Category, "all") {
		args = append(args, "%"+filter.Category+"%")
		conditions = append(conditions, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Price, &e.Capacity, &e.AvailableSeats, &e.ImageURL, &e.Category,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

var _ EventRepository = (*PGEventRepository)(nil)
