package convention

import (
	"strconv"
	"strings"

	"github.com/audiolab/sofaconv/pkg/errors"
)

// defaultField is the one column whose absent value is reported as an
// empty string instead of null.
const defaultField = "default"

// legacyDefaults maps known-bad upstream default literals to their
// canonical replacement. The match is exact on the raw cell text and is
// checked before generic parsing.
var legacyDefaults = map[string]interface{}{
	// Data.SOS in SimpleFreeFieldHRSOS and SimpleFreeFieldSOS
	"permute([0 0 0 1 0 0; 0 0 0 1 0 0], [3 1 2]);": []interface{}{
		[]interface{}{
			[]interface{}{int64(0), int64(0), int64(0), int64(1), int64(0), int64(0)},
			[]interface{}{int64(0), int64(0), int64(0), int64(1), int64(0), int64(0)},
		},
	},
	// Data.SOS in GeneralSOS
	"permute([0 0 0 1 0 0], [3 1 2]);": []interface{}{
		[]interface{}{
			[]interface{}{int64(0), int64(0), int64(0), int64(1), int64(0), int64(0)},
		},
	},
	"{''}": []interface{}{""},
}

// compileRow assembles one data line into an Entry. The first cell is the
// entry name, the remaining cells align positionally with the header
// fields. A line that omits only the trailing comment cell is tolerated;
// any other field-count mismatch fails.
func compileRow(cells []string, fields []string) (*Entry, error) {
	if len(cells) == 0 || cells[0] == "" {
		return nil, errors.New(errors.ErrorTypeMalformedRow, "missing entry name")
	}
	name := cells[0]

	// tolerate a source line that omits the trailing comment; the implicit
	// comment is the empty string, not absent
	implicitComment := false
	if len(cells) == len(fields) {
		cells = append(cells, "")
		implicitComment = true
	}
	if len(cells) != len(fields)+1 {
		return nil, errors.Newf(errors.ErrorTypeMalformedRow,
			"entry %q has %d cells, header defines %d fields", name, len(cells)-1, len(fields))
	}

	entry := NewEntry(name)
	for i, field := range fields {
		raw := strings.TrimSpace(cells[i+1])
		key := strings.ToLower(field)

		if implicitComment && i == len(fields)-1 {
			entry.Set(key, "")
			continue
		}

		value, err := parseField(key, raw)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeMalformedRow,
				"failed to parse entry %q, cell %d (%s)", name, i+1, key)
		}

		if key == defaultField {
			if value == nil {
				// the default column reports "no default" as an empty string
				value = ""
			}
			if strings.Contains(name, "Version") {
				value, err = coerceVersion(value)
				if err != nil {
					return nil, errors.Wrapf(err, errors.ErrorTypeMalformedRow,
						"failed to parse entry %q, cell %d (%s)", name, i+1, key)
				}
			}
		}

		entry.Set(key, value)
	}
	return entry, nil
}

// parseField parses one cell, consulting the legacy rewrite table for the
// default column before generic parsing.
func parseField(key, raw string) (interface{}, error) {
	if key == defaultField {
		if canonical, ok := legacyDefaults[raw]; ok {
			return canonical, nil
		}
	}
	return ParseCell(raw)
}

// coerceVersion forces a version default to its string form. Version
// numbers must always be strings downstream even when the source
// expresses them numerically.
func coerceVersion(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int64:
		return formatVersion(float64(v)), nil
	case float64:
		return formatVersion(v), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeMalformedRow, "version default %v is not a number", value)
	}
}

// formatVersion renders a numeric version with the shortest decimal form,
// keeping one decimal place for integral values (1 becomes "1.0").
func formatVersion(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
