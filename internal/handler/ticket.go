package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-kot/internal/queue"
	"github.com/iliyamo/restaurant-kot/internal/repository"
)

// TicketHandler implements the KOT endpoints: the transactional save,
// the list/detail/latest queries and line-item cancellation.  All methods
// assume JWT middleware already ran; the acting user always comes from the
// token, never from the body.
type TicketHandler struct {
	Tickets *repository.TicketRepo
	// Publish sends the post-commit event.  Injected so tests run without
	// a broker; defaults to queue.PublishTicketCreated.
	Publish func(ctx context.Context, ev queue.TicketCreatedEvent) error
}

func NewTicketHandler(tickets *repository.TicketRepo) *TicketHandler {
	if tickets == nil {
		panic("nil repository passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: tickets, Publish: queue.PublishTicketCreated}
}

type saveTicketReq struct {
	MenuSection string                       `json:"menu_section"`
	ServiceMode string                       `json:"service_mode"`
	Room        string                       `json:"room"`
	Items       []repository.TicketItemInput `json:"items"`
}

// Save handles POST /v1/tickets.  Validation happens entirely before the
// transaction is opened; once the batch commits the response carries the
// allocated ticket number.  Note the save is not blindly retryable: a
// caller that times out cannot tell a failed commit from a lost response
// (same trade-off as the reference system, no idempotency token).
func (h *TicketHandler) Save(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req saveTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.MenuSection = strings.TrimSpace(req.MenuSection)
	req.ServiceMode = strings.TrimSpace(req.ServiceMode)
	req.Room = strings.TrimSpace(req.Room)
	if req.MenuSection == "" || req.ServiceMode == "" || req.Room == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "menu_section, service_mode and room are required"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items is required"})
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Description) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "item description is required", "index": i})
		}
		if it.Qty < 0 || it.Price < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "qty and price must be non-negative", "index": i})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticketNo, err := h.Tickets.SaveTicket(ctx, repository.SaveTicketInput{
		MenuSection: req.MenuSection,
		ServiceMode: req.ServiceMode,
		RoomNo:      req.Room,
		UserID:      userID,
		Items:       req.Items,
	})
	if err != nil {
		log.Printf("save ticket failed for user %d: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save ticket"})
	}

	// Best effort: the ticket is committed, a broker outage only delays
	// the printed receipt.
	if h.Publish != nil {
		total := 0.0
		for _, it := range req.Items {
			total += it.Total
		}
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pubCancel()
			_ = h.Publish(pubCtx, queue.TicketCreatedEvent{
				TicketNo:    ticketNo,
				UserID:      userID,
				MenuSection: req.MenuSection,
				ServiceMode: req.ServiceMode,
				RoomNo:      req.Room,
				ItemCount:   len(req.Items),
				TotalAmount: total,
				CreatedAt:   time.Now().UTC().Format(time.RFC3339),
			})
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{"ticket_number": ticketNo})
}

// List handles GET /v1/tickets?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *TicketHandler) List(c echo.Context) error {
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	numbers, err := h.Tickets.ListTicketNumbers(ctx, from, to)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if numbers == nil {
		numbers = []int64{}
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_numbers": numbers})
}

// Details handles GET /v1/tickets/:number.
func (h *TicketHandler) Details(c echo.Context) error {
	ticketNo, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || ticketNo <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket number"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Tickets.TicketItems(ctx, ticketNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_number": ticketNo, "items": items})
}

// Printable handles GET /v1/tickets/:number/print.  It returns the
// non-cancelled items of the given ticket — what a reprint after
// cancellations renders — and 404 once nothing printable remains.
func (h *TicketHandler) Printable(c echo.Context) error {
	ticketNo, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || ticketNo <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket number"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Tickets.ActiveTicketItems(ctx, ticketNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no printable items for this ticket"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_number": ticketNo, "items": items})
}

// Latest handles GET /v1/tickets/latest.  It returns the authenticated
// user's most recent ticket with cancelled items filtered out — the data
// the print preview screen renders.
func (h *TicketHandler) Latest(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticketNo, items, err := h.Tickets.LatestTicketForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no tickets for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_number": ticketNo, "items": items})
}

// Cancel handles PUT /v1/tickets/items/:id/cancel.  Safe to retry: an
// already-cancelled item reports success again.
func (h *TicketHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tickets.CancelItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": true})
}
