// Package printer renders kitchen order tickets as fixed-width text for a
// 32-column ESC/POS thermal printer and defines the sink a rendered
// receipt is delivered to.  The actual Bluetooth pairing and driver live
// in the terminal app, not here.
package printer

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-kot/internal/model"
)

// width is the character width of the target thermal printer.
const width = 32

const divider = "-------------------------------"

// header printed centered at the top of every receipt.
const header = "THE KODAI HAVEN"

// Render formats a ticket's line items as a receipt.  Cancelled items are
// skipped.  Room number and service mode are taken from the first
// non-cancelled item, a convention the ticket table relies on since they
// are stamped identically onto every line of a save call.  now supplies
// the printed date/time so output stays deterministic in tests.
func Render(ticketNo int64, items []model.TicketItem, now time.Time) string {
	var b strings.Builder

	valid := make([]model.TicketItem, 0, len(items))
	for _, it := range items {
		if !it.Cancelled {
			valid = append(valid, it)
		}
	}

	room, mode := "-", "-"
	if len(valid) > 0 {
		if valid[0].RoomNo != "" {
			room = valid[0].RoomNo
		}
		if valid[0].ServiceMode != "" {
			mode = valid[0].ServiceMode
		}
	}

	b.WriteString(center(header) + "\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "KOT NO: %d\n", ticketNo)
	fmt.Fprintf(&b, "DATE: %s\n", now.Format("02/01/2006"))
	fmt.Fprintf(&b, "TIME: %s\n", now.Format("15:04:05"))
	fmt.Fprintf(&b, "ROOM NO: %s\n", room)
	fmt.Fprintf(&b, "MODE: %s\n", mode)
	b.WriteString(divider + "\n")
	b.WriteString("SNO ITEM           QTY  PRICE\n")
	b.WriteString(divider + "\n")

	totalQty := 0
	totalAmt := 0.0
	for i, it := range valid {
		b.WriteString(padEnd(fmt.Sprintf("%d", i+1), 4))
		b.WriteString(padEnd(truncate(it.Description, 14), 14))
		b.WriteString(padEnd(fmt.Sprintf("%d", it.Qty), 5))
		b.WriteString(padEnd(fmt.Sprintf("Rs.%s", money(it.Price)), 6))
		b.WriteString("\n")
		if it.Remarks != "" {
			fmt.Fprintf(&b, "   (%s)\n", it.Remarks)
		}
		totalQty += it.Qty
		totalAmt += it.Total
	}

	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "TOTAL QTY : %d\n", totalQty)
	fmt.Fprintf(&b, "TOTAL AMT : Rs.%s\n", money(totalAmt))
	b.WriteString(divider + "\n")

	return b.String()
}

// money trims trailing decimal zeros so whole-rupee prices print as "50",
// matching the terminal's preview.
func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// truncate cuts a string to at most n characters.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// padEnd right-pads s with spaces to at least n characters.
func padEnd(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// center pads s on the left so it sits centered on the receipt.
func center(s string) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}
