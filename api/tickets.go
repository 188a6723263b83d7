package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/eventy/internal/service/tickets"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.book)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id/cancel", h.cancel)
	router.POST("/verify", h.verify)
	router.GET("/stats/:eventId", h.stats)
}

func (h *TicketHandler) book(c *gin.Context) {
	var input tickets.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.UserID = c.GetString(ctxUserID)

	ticket, err := h.service.Book(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Ticket booked successfully",
		"ticket":  ticket,
		"qrCode":  ticket.QRCode,
	})
}

func (h *TicketHandler) list(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	email := c.Query("email")

	result, err := h.service.ListForUser(c.Request.Context(), userID, email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tickets": result})
}

func (h *TicketHandler) get(c *gin.Context) {
	ticket, err := h.service.Get(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": ticket})
}

func (h *TicketHandler) cancel(c *gin.Context) {
	ticket, err := h.service.Cancel(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket cancelled successfully",
		"ticket":  ticket,
	})
}

func (h *TicketHandler) verify(c *gin.Context) {
	var input tickets.VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.Verify(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket verified successfully",
		"ticket":  ticket,
		"event":   ticket.Event,
	})
}

func (h *TicketHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats.ByStatus,
		"totals":  stats.Totals,
	})
}
