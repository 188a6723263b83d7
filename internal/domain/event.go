package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	Location       string          `json:"location"`
	Price          decimal.Decimal `json:"price"`
	Capacity       int             `json:"capacity"`
	AvailableSeats int             `json:"availableSeats"`
	ImageURL       string          `json:"imageUrl"`
	Category       string          `json:"category"`
	CreatedBy      *string         `json:"createdBy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
