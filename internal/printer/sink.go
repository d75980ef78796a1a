package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ReceiptSink receives rendered receipts.  The production deployment
// forwards documents to the printer bridge; tests and development use
// FileSink.  Injecting the sink keeps the query/format pipeline testable
// without hardware.
type ReceiptSink interface {
	Print(ctx context.Context, ticketNo int64, doc string) error
}

// FileSink appends every receipt to a spool file, separated by a form-feed
// marker so individual receipts stay recognizable.
type FileSink struct {
	Path string
	mu   sync.Mutex
}

// NewFileSink returns a FileSink writing to the given path.
func NewFileSink(path string) *FileSink { return &FileSink{Path: path} }

// Print appends the document to the spool file, creating the directory on
// first use.
func (s *FileSink) Print(_ context.Context, ticketNo int64, doc string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create spool dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open spool file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\f\n", doc); err != nil {
		return fmt.Errorf("write receipt %d: %w", ticketNo, err)
	}
	return nil
}
