package tickets

import (
	"crypto/rand"
	"fmt"
	"time"
)

const codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newTicketCode builds the human-readable ticket identifier, e.g.
// TKT-1717430000123-9X2QF. The random suffix keeps codes generated within
// the same millisecond distinct.
func newTicketCode() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	for i := range buf {
		buf[i] = codeCharset[int(buf[i])%len(codeCharset)]
	}
	return fmt.Sprintf("TKT-%d-%s", time.Now().UnixMilli(), string(buf)), nil
}
