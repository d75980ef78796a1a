package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-kot/internal/queue"
	"github.com/iliyamo/restaurant-kot/internal/repository"
)

func newTicketHandler(t *testing.T) (*TicketHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	h := NewTicketHandler(repository.NewTicketRepo(db))
	h.Publish = nil // individual tests install a capture hook when needed
	return h, mock
}

// newRequest builds an echo context carrying an authenticated user, the
// way the JWT middleware leaves it (numeric claims decode as float64).
func newRequest(method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(7))
	return c, rec
}

func TestSaveRejectsEmptyItemsBeforeStore(t *testing.T) {
	h, mock := newTicketHandler(t)

	c, rec := newRequest(http.MethodPost, "/v1/tickets",
		`{"menu_section":"Starters","service_mode":"AC","room":"12","items":[]}`)
	require.NoError(t, h.Save(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// No transaction was ever opened.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsMissingHeaderFields(t *testing.T) {
	h, mock := newTicketHandler(t)

	c, rec := newRequest(http.MethodPost, "/v1/tickets",
		`{"menu_section":"","service_mode":"AC","room":"12","items":[{"description":"Soup","qty":1,"price":50,"total":50}]}`)
	require.NoError(t, h.Save(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsNegativeQty(t *testing.T) {
	h, mock := newTicketHandler(t)

	c, rec := newRequest(http.MethodPost, "/v1/tickets",
		`{"menu_section":"Starters","service_mode":"AC","room":"12","items":[{"description":"Soup","qty":-1,"price":50,"total":50}]}`)
	require.NoError(t, h.Save(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReturnsAllocatedNumberAndPublishes(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(kot_no\\), 0\\) FROM kot_items").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(41))
	mock.ExpectExec("INSERT INTO kot_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	published := make(chan queue.TicketCreatedEvent, 1)
	h.Publish = func(_ context.Context, ev queue.TicketCreatedEvent) error {
		published <- ev
		return nil
	}

	c, rec := newRequest(http.MethodPost, "/v1/tickets",
		`{"menu_section":"Starters","service_mode":"AC","room":"12","items":[{"description":"Soup","qty":2,"price":50,"total":100}]}`)
	require.NoError(t, h.Save(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		TicketNumber int64 `json:"ticket_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.TicketNumber)

	select {
	case ev := <-published:
		assert.Equal(t, int64(42), ev.TicketNo)
		assert.Equal(t, uint64(7), ev.UserID)
		assert.Equal(t, 1, ev.ItemCount)
		assert.Equal(t, 100.0, ev.TotalAmount)
	case <-time.After(time.Second):
		t.Fatal("ticket.created event was not published")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStoreFailureReturns500(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(kot_no\\), 0\\) FROM kot_items").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	c, rec := newRequest(http.MethodPost, "/v1/tickets",
		`{"menu_section":"Starters","service_mode":"AC","room":"12","items":[{"description":"Soup","qty":2,"price":50,"total":100}]}`)
	require.NoError(t, h.Save(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsBadDates(t *testing.T) {
	h, _ := newTicketHandler(t)

	c, rec := newRequest(http.MethodGet, "/v1/tickets?from=notadate&to=2025-03-14", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsInvertedRange(t *testing.T) {
	h, mock := newTicketHandler(t)

	c, rec := newRequest(http.MethodGet, "/v1/tickets?from=2025-03-14&to=2025-03-13", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReturnsNumbers(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectQuery("SELECT DISTINCT kot_no FROM kot_items").
		WithArgs("2025-03-13", "2025-03-14").
		WillReturnRows(sqlmock.NewRows([]string{"kot_no"}).AddRow(44).AddRow(42))

	c, rec := newRequest(http.MethodGet, "/v1/tickets?from=2025-03-13&to=2025-03-14", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TicketNumbers []int64 `json:"ticket_numbers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{44, 42}, resp.TicketNumbers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsUnknownTicketIs404(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectQuery("FROM kot_items WHERE kot_no=").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kot_no", "menu_section", "service_mode", "room_no", "item_code",
			"description", "qty", "price", "total", "remarks", "user_id", "created_at", "cancelled",
		}))

	c, rec := newRequest(http.MethodGet, "/v1/tickets/99", "")
	c.SetParamNames("number")
	c.SetParamValues("99")
	require.NoError(t, h.Details(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsRejectsBadNumber(t *testing.T) {
	h, _ := newTicketHandler(t)

	c, rec := newRequest(http.MethodGet, "/v1/tickets/abc", "")
	c.SetParamNames("number")
	c.SetParamValues("abc")
	require.NoError(t, h.Details(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrintableReturnsActiveItems(t *testing.T) {
	h, mock := newTicketHandler(t)

	created := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE kot_no=\\? AND cancelled=FALSE").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kot_no", "menu_section", "service_mode", "room_no", "item_code",
			"description", "qty", "price", "total", "remarks", "user_id", "created_at", "cancelled",
		}).AddRow(2, 42, "Starters", "AC", "12", "", "Salad", 1, 40.0, 40.0, "", 7, created, false))

	c, rec := newRequest(http.MethodGet, "/v1/tickets/42/print", "")
	c.SetParamNames("number")
	c.SetParamValues("42")
	require.NoError(t, h.Printable(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TicketNumber int64 `json:"ticket_number"`
		Items        []struct {
			Description string `json:"description"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.TicketNumber)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Salad", resp.Items[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrintableAllCancelledIs404(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectQuery("WHERE kot_no=\\? AND cancelled=FALSE").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kot_no", "menu_section", "service_mode", "room_no", "item_code",
			"description", "qty", "price", "total", "remarks", "user_id", "created_at", "cancelled",
		}))

	c, rec := newRequest(http.MethodGet, "/v1/tickets/42/print", "")
	c.SetParamNames("number")
	c.SetParamValues("42")
	require.NoError(t, h.Printable(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestNoTicketsIs404(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectQuery("SELECT kot_no FROM kot_items WHERE user_id=").
		WithArgs(uint64(7)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newRequest(http.MethodGet, "/v1/tickets/latest", "")
	require.NoError(t, h.Latest(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnknownItemIs404(t *testing.T) {
	h, mock := newTicketHandler(t)

	mock.ExpectExec("UPDATE kot_items SET cancelled=TRUE WHERE id=").
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM kot_items WHERE id=").
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newRequest(http.MethodPut, "/v1/tickets/items/404/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("404")
	require.NoError(t, h.Cancel(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRejectsBadID(t *testing.T) {
	h, _ := newTicketHandler(t)

	c, rec := newRequest(http.MethodPut, "/v1/tickets/items/zero/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("zero")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
