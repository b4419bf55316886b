package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// ParseSelection parses comma separated 1-based indices such as "1, 3,3".
// Whitespace anywhere inside a token is ignored. Order and repeats are preserved.
func ParseSelection(input string) ([]int, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptySelection
	}

	parts := strings.Split(input, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		token := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, part)
		if token == "" {
			return nil, errors.Wrap(ErrInvalidSelection, "empty entry")
		}

		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSelection, "%q", token)
		}
		indices = append(indices, n)
	}
	return indices, nil
}
