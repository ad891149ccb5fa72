// Package manifest writes and reads the flat content lookup table consumed by the runtime
// asset manager. Each line is "<id>,<lookupPath>,<typeCode>" with no header. Paths are not
// escaped.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spaghettifunk/contentbuild/content/registry"
)

// DefaultPath is where the build writes the manifest and where the runtime reads it.
const DefaultPath = "Build/Content/content.csv"

// Row is one manifest line.
type Row struct {
	ID         uint32
	LookupPath string
	Type       uint32
}

func (r Row) String() string {
	return fmt.Sprintf("%d,%s,%d", r.ID, r.LookupPath, r.Type)
}

// Rows converts the registry into manifest rows in ID order.
func Rows(reg *registry.Registry) []Row {
	rows := make([]Row, 0, reg.Len())
	for _, d := range reg.Descriptors() {
		rows = append(rows, Row{ID: d.ID, LookupPath: d.LookupPath, Type: uint32(d.Type)})
	}
	return rows
}

// Write emits one newline-terminated line per descriptor.
func Write(w io.Writer, reg *registry.Registry) error {
	bw := bufio.NewWriter(w)
	for _, row := range Rows(reg) {
		if _, err := bw.WriteString(row.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Render returns the manifest text.
func Render(reg *registry.Registry) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes do not fail
	_ = Write(&buf, reg)
	return buf.Bytes()
}

// Read parses a manifest. The id is the first field and the type code the last one, so a
// path containing commas is still read back intact. Blank lines are skipped.
func Read(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		row, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseRow(text string) (Row, error) {
	first := strings.Index(text, ",")
	last := strings.LastIndex(text, ",")
	if first < 0 || first == last {
		return Row{}, fmt.Errorf("expected id,path,type: %q", text)
	}

	id, err := strconv.ParseUint(text[:first], 10, 32)
	if err != nil {
		return Row{}, fmt.Errorf("bad asset id: %w", err)
	}
	typ, err := strconv.ParseUint(text[last+1:], 10, 32)
	if err != nil {
		return Row{}, fmt.Errorf("bad asset type: %w", err)
	}
	return Row{ID: uint32(id), LookupPath: text[first+1 : last], Type: uint32(typ)}, nil
}
