package convention

import (
	"strconv"
	"strings"

	"github.com/audiolab/sofaconv/pkg/errors"
)

// ParseCell classifies one raw cell token into a typed value.
//
// An empty or space-only token parses to nil (absent). A token not
// starting with "[" is a scalar: numeric coercion is attempted (float if
// the literal contains a ".", integer otherwise) and the plain string is
// kept when coercion fails. A token starting with "[" is an array
// literal: flat when the interior has no ";", one level of nesting
// otherwise. Array elements must all be numeric.
func ParseCell(raw string) (interface{}, error) {
	cell := strings.TrimSpace(raw)
	if strings.ReplaceAll(cell, " ", "") == "" {
		return nil, nil
	}

	if !strings.HasPrefix(cell, "[") {
		return parseScalar(cell), nil
	}

	// strip the enclosing brackets
	inner := strings.TrimSuffix(strings.TrimPrefix(cell, "["), "]")

	if !strings.Contains(inner, ";") {
		return parseFlatArray(inner)
	}

	// one segment per ";" becomes one row of the nested array
	segments := strings.Split(inner, ";")
	nested := make([]interface{}, len(segments))
	for i, segment := range segments {
		row, err := parseFlatArray(segment)
		if err != nil {
			return nil, err
		}
		nested[i] = row
	}
	return nested, nil
}

// parseScalar coerces a non-array token to int64 or float64, falling
// back to the string itself.
func parseScalar(cell string) interface{} {
	if strings.Contains(cell, ".") {
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return f
		}
		return cell
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	return cell
}

// parseFlatArray parses the interior of a flat array literal. Runs of
// spaces and commas both separate elements.
func parseFlatArray(inner string) ([]interface{}, error) {
	elements := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(elements) == 0 {
		return nil, errors.Newf(errors.ErrorTypeMalformedCell, "empty array literal %q", inner)
	}

	values := make([]interface{}, len(elements))
	for i, element := range elements {
		value, err := parseNumber(element)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// parseNumber parses one array element, which must be numeric
func parseNumber(element string) (interface{}, error) {
	if strings.Contains(element, ".") {
		f, err := strconv.ParseFloat(element, 64)
		if err != nil {
			return nil, errors.Newf(errors.ErrorTypeMalformedCell, "invalid float %q in array literal", element)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(element, 10, 64)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeMalformedCell, "invalid integer %q in array literal", element)
	}
	return n, nil
}
