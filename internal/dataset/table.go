package dataset

import (
	"fmt"
	"os"

	"github.com/couchcryptid/trackota-etl/internal/domain"
)

// ReadTable opens path and parses it as a table. XLSX workbooks are read
// from their first sheet; anything else is treated as delimited text.
func ReadTable(path string, opts domain.ReadOptions) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	if hasExt(path, ".xlsx") {
		return domain.ParseWorkbook(f, opts)
	}
	return domain.ParseTable(f, opts)
}
