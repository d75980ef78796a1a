package model

import "time"

// TicketItem is one line of a kitchen order ticket as stored in the
// `kot_items` table.  All lines saved in one call share a TicketNo, and
// TicketNo is never changed afterwards.  Cancelled is the only mutable
// column; cancellation is one-way.
//
// Total is persisted exactly as submitted by the client.  The service
// does not recompute Qty*Price: the terminal owns that arithmetic and
// historic rows must keep whatever was printed at the time.
type TicketItem struct {
    ID          uint64    `json:"id"`           // kot_items.id
    TicketNo    int64     `json:"ticket_no"`    // kot_items.kot_no
    MenuSection string    `json:"menu_section"` // kot_items.menu_section
    ServiceMode string    `json:"service_mode"` // kot_items.service_mode
    RoomNo      string    `json:"room_no"`      // kot_items.room_no
    ItemCode    string    `json:"item_code"`    // kot_items.item_code
    Description string    `json:"description"`  // kot_items.description
    Qty         int       `json:"qty"`          // kot_items.qty
    Price       float64   `json:"price"`        // kot_items.price
    Total       float64   `json:"total"`        // kot_items.total
    Remarks     string    `json:"remarks"`      // kot_items.remarks
    UserID      uint64    `json:"user_id"`      // kot_items.user_id
    CreatedAt   time.Time `json:"created_at"`   // kot_items.created_at
    Cancelled   bool      `json:"cancelled"`    // kot_items.cancelled
}
