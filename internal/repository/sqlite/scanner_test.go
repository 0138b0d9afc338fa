package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanner implements the Scanner interface for testing
type TestScanner struct {
	data []interface{}
	err  error
}

func (ts *TestScanner) Scan(dest ...interface{}) error {
	if ts.err != nil {
		return ts.err
	}
	if len(dest) != len(ts.data) {
		return errors.New("mismatch in number of destinations")
	}
	for i, d := range dest {
		if v, ok := d.(*string); ok {
			*v = ts.data[i].(string)
		}
	}
	return nil
}

func TestScanStorageEntry(t *testing.T) {
	tests := []struct {
		name        string
		scanner     *TestScanner
		expected    *StorageEntry
		expectError bool
	}{
		{
			name:    "valid row",
			scanner: &TestScanner{data: []interface{}{"auth-storage", `{"token":"x"}`, "2025-02-01T08:00:00Z"}},
			expected: &StorageEntry{
				Key:       "auth-storage",
				Value:     `{"token":"x"}`,
				UpdatedAt: time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
			},
		},
		{
			name:        "scan error",
			scanner:     &TestScanner{err: errors.New("scan failed")},
			expectError: true,
		},
		{
			name:        "bad timestamp",
			scanner:     &TestScanner{data: []interface{}{"k", "v", "yesterday"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ScanStorageEntry(tt.scanner)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, entry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Key, entry.Key)
			assert.Equal(t, tt.expected.Value, entry.Value)
			assert.True(t, tt.expected.UpdatedAt.Equal(entry.UpdatedAt))
		})
	}
}
