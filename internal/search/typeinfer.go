package search

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// parsed is the outcome of a structured parse attempt. ok is false when the
// value is not a JSON document.
type parsed struct {
	kind domain.DataType
	ok   bool
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
var radixPattern = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[bB][01]+|[oO][0-7]+)$`)

// InferType classifies a raw stored value. It never fails: values that are
// not JSON fall through to literal checks.
func InferType(value string) domain.DataType {
	p := parseStructured(value)
	if p.ok {
		return p.kind
	}

	if value == "true" || value == "false" {
		return domain.DataTypeBoolean
	}
	if isNumericLiteral(value) {
		return domain.DataTypeNumber
	}
	return domain.DataTypeString
}

func parseStructured(value string) parsed {
	if !json.Valid([]byte(value)) {
		return parsed{}
	}

	trimmed := strings.TrimLeft(value, " \t\r\n")
	switch trimmed[0] {
	case '[':
		return parsed{kind: domain.DataTypeArray, ok: true}
	case '{':
		return parsed{kind: domain.DataTypeObject, ok: true}
	case 'n':
		return parsed{kind: domain.DataTypeNull, ok: true}
	case 't', 'f':
		return parsed{kind: domain.DataTypeBoolean, ok: true}
	case '"':
		return parsed{kind: domain.DataTypeString, ok: true}
	default:
		return parsed{kind: domain.DataTypeNumber, ok: true}
	}
}

// isNumericLiteral mirrors the browser's Number() coercion for non-blank
// strings: decimal and exponent forms, 0x/0b/0o integers and Infinity.
func isNumericLiteral(value string) bool {
	s := strings.TrimSpace(value)
	if s == "" {
		return false
	}
	switch s {
	case "Infinity", "+Infinity", "-Infinity":
		return true
	}
	return decimalPattern.MatchString(s) || radixPattern.MatchString(s)
}
