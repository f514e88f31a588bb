package knowledge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineBytes bounds a single encoded item.
const maxLineBytes = 1 << 20

// EncodeJSONL writes one JSON document per line.
func EncodeJSONL(w io.Writer, items []Item) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range items {
		if err := enc.Encode(&items[i]); err != nil {
			return fmt.Errorf("encode knowledge item %q: %w", items[i].ID, err)
		}
	}
	return nil
}

// DecodeJSONL parses line-delimited items. A corrupt line is skipped and
// reported in the returned error slice; the remaining lines still parse.
// Only a read failure ends decoding early.
func DecodeJSONL(r io.Reader) ([]Item, []error) {
	var (
		items []Item
		errs  []error
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("read knowledge lines: %w", err))
	}
	return items, errs
}
