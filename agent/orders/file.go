package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

// FileStore serves order lookups from a JSON array on disk, loaded once at
// construction. Suited to local runs and tests.
type FileStore struct {
	records []contractx.OrderRecord
}

func NewFileStore(path string) (*FileStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read orders file: %w", err)
	}

	var records []contractx.OrderRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("unmarshal orders file %s: %w", path, err)
	}
	return &FileStore{records: records}, nil
}

// Lookup matches email case-insensitively and order number exactly. Both
// must match; either miss yields the same ErrOrderNotFound so callers
// cannot probe which field was wrong.
func (s *FileStore) Lookup(_ context.Context, email, orderNumber string) (contractx.OrderRecord, error) {
	for _, r := range s.records {
		if strings.EqualFold(r.Email, email) && r.OrderNumber == orderNumber {
			return r, nil
		}
	}
	return contractx.OrderRecord{}, contractx.ErrOrderNotFound
}
