package orders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

func writeOrdersFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	fixture := `[
  {"OrderNumber": "W001", "Email": "amy@example.com", "Status": "in-transit", "TrackingNumber": "940011"},
  {"OrderNumber": "W002", "Email": "ben@example.com", "Status": "delivered", "TrackingNumber": "940012"},
  {"OrderNumber": "W003", "Email": "amy@example.com", "Status": "processing"}
]`
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFileStoreLookup(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(writeOrdersFixture(t))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	rec, err := store.Lookup(context.Background(), "amy@example.com", "W001")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if rec.Status != "in-transit" || rec.TrackingNumber != "940011" {
		t.Fatalf("Lookup() = %+v, want W001 row", rec)
	}
	if got, want := rec.TrackingURL(), "https://tools.usps.com/go/TrackConfirmAction?tLabels=940011"; got != want {
		t.Fatalf("TrackingURL() = %q, want %q", got, want)
	}
}

func TestFileStoreLookupEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(writeOrdersFixture(t))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	rec, err := store.Lookup(context.Background(), "AMY@Example.COM", "W003")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if rec.OrderNumber != "W003" {
		t.Fatalf("Lookup() = %+v, want W003", rec)
	}
	if rec.TrackingURL() != "" {
		t.Fatalf("TrackingURL() = %q, want empty when no tracking number", rec.TrackingURL())
	}
}

func TestFileStoreLookupMissIsUniform(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(writeOrdersFixture(t))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	// Wrong email with a real order number, and the reverse, must be
	// indistinguishable to the caller.
	_, wrongEmail := store.Lookup(context.Background(), "stranger@example.com", "W001")
	_, wrongNumber := store.Lookup(context.Background(), "amy@example.com", "W999")

	if !errors.Is(wrongEmail, contractx.ErrOrderNotFound) {
		t.Fatalf("wrong email error = %v, want ErrOrderNotFound", wrongEmail)
	}
	if !errors.Is(wrongNumber, contractx.ErrOrderNotFound) {
		t.Fatalf("wrong number error = %v, want ErrOrderNotFound", wrongNumber)
	}
	if wrongEmail.Error() != wrongNumber.Error() {
		t.Fatal("miss errors must not reveal which field mismatched")
	}
}

func TestFileStoreRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Fatal("NewFileStore() accepted malformed JSON")
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("NewFileStore() accepted a missing file")
	}
}
