package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "booked"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusUsed      TicketStatus = "used"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type Ticket struct {
	ID            string          `json:"id"`
	TicketCode    string          `json:"ticketId"`
	EventID       string          `json:"eventId"`
	UserID        *string         `json:"userId,omitempty"`
	UserEmail     string          `json:"userEmail"`
	TicketCount   int             `json:"ticketCount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Status        TicketStatus    `json:"status"`
	QRCode        string          `json:"qrCode,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Attached for response shaping, not stored on the ticket row.
	Event *Event `json:"event,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// EventTicketStats aggregates bookings for one event, grouped by status.
type EventTicketStats struct {
	ByStatus []StatusStats `json:"stats"`
	Totals   TotalStats    `json:"totals"`
}

type StatusStats struct {
	Status  TicketStatus    `json:"status"`
	Tickets int             `json:"count"`
	Revenue decimal.Decimal `json:"totalRevenue"`
}

type TotalStats struct {
	Tickets  int             `json:"totalTickets"`
	Revenue  decimal.Decimal `json:"totalRevenue"`
	Bookings int             `json:"totalBookings"`
}
