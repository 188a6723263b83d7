package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the data embedded in a ticket's QR code. Check-in scanners
// send it back verbatim, so the JSON field names are part of the contract.
type Payload struct {
	EventID     string `json:"eventId"`
	EventTitle  string `json:"eventTitle"`
	UserEmail   string `json:"userEmail"`
	TicketCount int    `json:"ticketCount"`
	BookingDate string `json:"bookingDate"`
	TicketCode  string `json:"ticketId"`
}

func NewPayload(eventID, eventTitle, userEmail string, ticketCount int, ticketCode string, bookedAt time.Time) Payload {
	return Payload{
		EventID:     eventID,
		EventTitle:  eventTitle,
		UserEmail:   userEmail,
		TicketCount: ticketCount,
		BookingDate: bookedAt.UTC().Format(time.RFC3339),
		TicketCode:  ticketCode,
	}
}

// Encode renders the payload as a PNG QR code and returns it as a data URL
// suitable for embedding in an email or API response.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal qr payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr image: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Decode parses the JSON payload a scanner read out of a QR code.
func Decode(raw string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	if p.EventID == "" || p.UserEmail == "" || p.TicketCode == "" {
		return nil, fmt.Errorf("qr payload missing required fields")
	}
	return &p, nil
}
