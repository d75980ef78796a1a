package model

// MenuItem is one entry of the menu catalog.  The catalog is maintained
// by back office tooling and is read-only for this service.
type MenuItem struct {
    ID      uint64  // menu_items.id
    Section string  // menu_items.section (e.g. "Starters")
    Name    string  // menu_items.name
    Price   float64 // menu_items.price
}

// Room is a selectable room or table label.  Read-only.
type Room struct {
    ID   uint64 // rooms.id
    Name string // rooms.name
}

// ServiceMode is one of the service-mode labels offered when building a
// ticket, e.g. "AC", "Non-AC" or "Room Service".  The original system
// called these radio options.  Read-only.
type ServiceMode struct {
    ID   uint64 // service_modes.id
    Name string // service_modes.name
}
