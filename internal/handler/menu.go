package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-kot/internal/repository"
)

// MenuHandler serves the read-only catalog lookups a terminal needs while
// building a ticket.  All endpoints are GET and sit behind the menu cache.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

func NewMenuHandler(menu *repository.MenuRepo) *MenuHandler {
	if menu == nil {
		panic("nil repository passed to NewMenuHandler")
	}
	return &MenuHandler{Menu: menu}
}

type menuItemResp struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// GetSections handles GET /v1/menu/sections.
func (h *MenuHandler) GetSections(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sections, err := h.Menu.Sections(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if sections == nil {
		sections = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"sections": sections})
}

// GetSectionItems handles GET /v1/menu/sections/:section/items.
func (h *MenuHandler) GetSectionItems(c echo.Context) error {
	section := strings.TrimSpace(c.Param("section"))
	if section == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "section is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Menu.ItemsBySection(ctx, section)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]menuItemResp, 0, len(items))
	for _, m := range items {
		out = append(out, menuItemResp{ID: m.ID, Name: m.Name, Price: m.Price})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetServiceModes handles GET /v1/service-modes.
func (h *MenuHandler) GetServiceModes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	modes, err := h.Menu.ServiceModes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if modes == nil {
		modes = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"service_modes": modes})
}

// GetRooms handles GET /v1/rooms.
func (h *MenuHandler) GetRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Menu.Rooms(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if rooms == nil {
		rooms = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}
