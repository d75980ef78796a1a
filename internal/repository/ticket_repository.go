package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-kot/internal/model"
)

// TicketRepo owns the kot_items table: the transactional save protocol,
// the ticket queries and line-item cancellation.  Every line item of one
// save call shares a freshly allocated kot_no; rows are never deleted.
type TicketRepo struct{ DB *sql.DB }

// selectItems is the shared column list for kot_items reads.
const selectItems = "SELECT id, kot_no, menu_section, service_mode, room_no, item_code, description, qty, price, total, remarks, user_id, created_at, cancelled FROM kot_items"

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

// TicketItemInput carries one line item as submitted by the terminal.
// Total arrives precomputed (qty*price) and is stored verbatim.
type TicketItemInput struct {
	ItemCode    string  `json:"item_code"`
	Description string  `json:"description"`
	Qty         int     `json:"qty"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
	Remarks     string  `json:"remarks"`
}

// SaveTicketInput groups the header fields shared by every line of a save
// call with the ordered line items themselves.
type SaveTicketInput struct {
	MenuSection string
	ServiceMode string
	RoomNo      string
	UserID      uint64
	Items       []TicketItemInput
}

// SaveTicket allocates the next ticket number and inserts all line items
// under it inside a single transaction.  Either every item is persisted or,
// on any failure, the transaction rolls back and no row survives.  The
// allocated number is returned.
//
// The number comes from MAX(kot_no)+1 read inside the same transaction.
// Open question carried over from the reference system: under the default
// READ COMMITTED/REPEATABLE READ isolation two concurrent saves can read
// the same max and collide; running the store at SERIALIZABLE (or moving
// to a dedicated counter row) closes the race.
func (r *TicketRepo) SaveTicket(ctx context.Context, in SaveTicketInput) (int64, error) {
	if len(in.Items) == 0 {
		return 0, ErrEmptyTicket
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var maxNo int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(kot_no), 0) FROM kot_items").Scan(&maxNo); err != nil {
		return 0, fmt.Errorf("read max ticket number: %w", err)
	}
	ticketNo := maxNo + 1

	for _, it := range in.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kot_items
				(kot_no, menu_section, service_mode, room_no, item_code, description, qty, price, total, remarks, user_id, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,NOW())`,
			ticketNo, in.MenuSection, in.ServiceMode, in.RoomNo,
			it.ItemCode, it.Description, it.Qty, it.Price, it.Total, it.Remarks,
			in.UserID)
		if err != nil {
			return 0, fmt.Errorf("insert line item %q: %w", it.Description, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return ticketNo, nil
}

// ListTicketNumbers returns the distinct ticket numbers that have at least
// one line item created within [from, to] inclusive (calendar dates),
// ordered descending.  A range whose end precedes its start is rejected
// with ErrInvalidRange before the store is touched.
func (r *TicketRepo) ListTicketNumbers(ctx context.Context, from, to time.Time) ([]int64, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT kot_no FROM kot_items
		WHERE DATE(created_at) BETWEEN ? AND ?
		ORDER BY kot_no DESC`,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// TicketItems returns all line items of a ticket in stable store order.
// A ticket number with no rows yields ErrNotFound.
func (r *TicketRepo) TicketItems(ctx context.Context, ticketNo int64) ([]model.TicketItem, error) {
	items, err := r.queryItems(ctx, selectItems+" WHERE kot_no=? ORDER BY id", ticketNo)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

// ActiveTicketItems returns the non-cancelled line items of a ticket —
// the rows a reprint after cancellations renders.  ErrNotFound when the
// ticket does not exist or every one of its items was cancelled.
func (r *TicketRepo) ActiveTicketItems(ctx context.Context, ticketNo int64) ([]model.TicketItem, error) {
	items, err := r.queryItems(ctx,
		selectItems+" WHERE kot_no=? AND cancelled=FALSE ORDER BY id", ticketNo)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

// LatestTicketForUser finds the most recently created line item owned by
// the user, takes its ticket number and returns that ticket's non-cancelled
// items.  A user who owns no line items yields ErrNotFound.  The returned
// slice can be empty when every item of the latest ticket was cancelled.
func (r *TicketRepo) LatestTicketForUser(ctx context.Context, userID uint64) (int64, []model.TicketItem, error) {
	var ticketNo int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT kot_no FROM kot_items WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT 1",
		userID).Scan(&ticketNo)
	if err == sql.ErrNoRows {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, err
	}

	items, err := r.queryItems(ctx,
		selectItems+" WHERE kot_no=? AND cancelled=FALSE ORDER BY id", ticketNo)
	if err != nil {
		return 0, nil, err
	}
	return ticketNo, items, nil
}

// CancelItem flips the cancelled flag of one line item.  Cancelling an
// already-cancelled item succeeds; an unknown id yields ErrNotFound.  Other
// items of the same ticket are untouched.
func (r *TicketRepo) CancelItem(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE kot_items SET cancelled=TRUE WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// MySQL reports zero affected rows both for a missing id and for a row
	// already cancelled; only the former is an error.
	var exists int
	err = r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM kot_items WHERE id=? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// queryItems runs a kot_items select and scans the full column set.
func (r *TicketRepo) queryItems(ctx context.Context, query string, args ...any) ([]model.TicketItem, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.TicketItem
	for rows.Next() {
		var it model.TicketItem
		if err := rows.Scan(&it.ID, &it.TicketNo, &it.MenuSection, &it.ServiceMode,
			&it.RoomNo, &it.ItemCode, &it.Description, &it.Qty, &it.Price,
			&it.Total, &it.Remarks, &it.UserID, &it.CreatedAt, &it.Cancelled); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
