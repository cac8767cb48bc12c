package nse

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoSymbolColumn means the constituent file has no Symbol column
var ErrNoSymbolColumn = errors.New("symbol column not found in index csv")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseConstituents returns the Symbol column of an index constituent file.
// The header is matched case-insensitively; blank symbols are skipped.
func ParseConstituents(body []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoSymbolColumn
	}

	var symbols []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if s := strings.TrimSpace(rec[col]); s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols, nil
}
