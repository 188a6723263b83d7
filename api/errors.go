package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/eventy/internal/domain"
)

// respondError maps the service error taxonomy onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var invalidArg *domain.InvalidArgumentError
	var insufficient *domain.InsufficientSeatsError
	var state *domain.InvalidStateError
	var dep *domain.DependencyError

	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &state):
		body := gin.H{"error": state.Msg}
		if state.Ticket != nil {
			body["ticket"] = state.Ticket
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &invalidArg), errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &dep):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
