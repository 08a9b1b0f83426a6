package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/ginjaninja78/inventory-consolidator/internal/types"
	"github.com/ginjaninja78/inventory-consolidator/pkg/utils"
)

// WriteRawDump writes every extracted record to a CSV file in dir, one row
// per record with its source document and page. It is an audit trail for
// the extraction step and does not take part in the report.
func WriteRawDump(records []types.RawRecord, dir, name string) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create raw dump: %w", err)
	}
	defer file.Close()

	if records == nil {
		records = []types.RawRecord{}
	}
	if err := gocsv.MarshalFile(&records, file); err != nil {
		return "", fmt.Errorf("failed to write raw dump: %w", err)
	}

	return path, nil
}
