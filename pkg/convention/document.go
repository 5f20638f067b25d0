package convention

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/audiolab/sofaconv/pkg/errors"
)

// Compile translates the raw bytes of one convention source file into a
// Record named after the file with its extension stripped. The bytes are
// decoded as Windows-1252; upstream files are not guaranteed to be clean
// UTF-8.
//
// The first line names the fields, starting at the second column. Every
// following line is compiled into an Entry; a later duplicate entry name
// overwrites the earlier one. Any row failure aborts the whole compile
// with the file name and 0-based line index attached.
func Compile(file string, data []byte) (*Record, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeDocument,
			"failed to decode %s", file).WithDetail("file", file)
	}

	lines := strings.Split(string(decoded), "\n")
	// a trailing newline produces one empty artifact line
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	record := NewRecord(strings.TrimSuffix(file, filepath.Ext(file)))
	var fields []string

	for idx, line := range lines {
		cells := splitLine(line)

		// first line contains the field names
		if idx == 0 {
			fields = cells[1:]
			continue
		}

		entry, err := compileRow(cells, fields)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeDocument,
				"failed to parse line %d in %s", idx, file).
				WithDetail("file", file).
				WithDetail("line", idx)
		}
		record.Put(entry)
	}

	record.normalize()
	return record, nil
}

// splitLine splits one line into trimmed tab-separated cells. The line is
// not trimmed as a whole: an empty trailing cell is still a cell, it
// parses to absent.
func splitLine(line string) []string {
	cells := strings.Split(line, "\t")
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}
