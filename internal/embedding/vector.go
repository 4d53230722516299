package embedding

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// FormatVector renders v as a pgvector text literal with seven decimals
// per component and no whitespace, e.g. [0.1000000,-0.2500000].
func FormatVector(v []float32) string {
	buf := make([]byte, 0, 2+len(v)*11)
	buf = append(buf, '[')
	for i, x := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(x), 'f', 7, 64)
	}
	buf = append(buf, ']')
	return string(buf)
}

// ParseVector reads a pgvector text literal.
func ParseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("invalid vector literal %q", s)
	}
	if s == "[]" {
		return []float32{}, nil
	}

	var vec pgvector.Vector
	if err := vec.Parse(s); err != nil {
		return nil, fmt.Errorf("invalid vector literal: %w", err)
	}

	return vec.Slice(), nil
}

// RoundTripError formats v, parses the literal back and returns the largest
// absolute difference between any input and output component.
func RoundTripError(v []float32) (float64, error) {
	parsed, err := ParseVector(FormatVector(v))
	if err != nil {
		return 0, err
	}
	if len(parsed) != len(v) {
		return 0, fmt.Errorf("round trip changed dimension from %d to %d", len(v), len(parsed))
	}

	var maxErr float64
	for i := range v {
		maxErr = math.Max(maxErr, math.Abs(float64(v[i])-float64(parsed[i])))
	}
	return maxErr, nil
}
