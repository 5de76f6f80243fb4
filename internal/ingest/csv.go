package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Reader loads the raw extract from disk.
type Reader struct {
	log *logger.Logger
}

// NewReader creates a Reader.
func NewReader(log *logger.Logger) *Reader {
	return &Reader{log: log}
}

// ReadFile reads the CSV extract at path into raw rows keyed by header
// column. The WHO export carries a UTF-8 BOM, which is stripped.
func (r *Reader) ReadFile(path string) ([]dataset.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open extract %s: %w", path, err)
	}
	defer f.Close()

	rows, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read extract %s: %w", path, err)
	}

	r.log.Infof("loaded extract %s: %d raw rows", path, len(rows))
	return rows, nil
}

// Read parses CSV content into raw rows. Rows shorter than the header are
// padded with empty cells; longer rows have the extras ignored.
func (r *Reader) Read(src io.Reader) ([]dataset.Raw, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // tolerate ragged rows; the cleaner decides

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []dataset.Raw
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		row := make(dataset.Raw, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
