// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into printed receipts.
package queue

// TicketCreatedEvent is published after a ticket batch commits.  It carries
// enough information for downstream consumers (receipt printing, sales
// analytics) without querying the primary database for the header fields.
type TicketCreatedEvent struct {
    TicketNo    int64   `json:"ticket_no"`
    UserID      uint64  `json:"user_id"`
    MenuSection string  `json:"menu_section"`
    ServiceMode string  `json:"service_mode"`
    RoomNo      string  `json:"room_no"`
    ItemCount   int     `json:"item_count"`
    TotalAmount float64 `json:"total_amount"`
    CreatedAt   string  `json:"created_at"`
}
