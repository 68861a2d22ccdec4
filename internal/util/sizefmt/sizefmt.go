// Package sizefmt converts between byte counts and unit-suffixed size
// strings. All multipliers are 1024-based: a bare integer means bytes,
// K/KB is 1024, M/MB is 1024^2, G/GB is 1024^3, T/TB is 1024^4. Unit
// matching is case-insensitive and tolerates whitespace between the
// number and the unit.
package sizefmt

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
)

// Parse converts a human-supplied size string to a byte count.
func Parse(sizeStr string) (int64, error) {
	// collapse any run of whitespace to the single separator the
	// matcher below accepts
	normalized := strings.Join(strings.Fields(sizeStr), " ")
	if normalized == "" {
		return 0, fmt.Errorf("empty size value")
	}

	size, err := units.RAMInBytes(normalized)
	if err != nil {
		return 0, fmt.Errorf(
			"invalid size '%s': expecting an integer with an optional K/KB, M/MB, G/GB or T/TB suffix",
			sizeStr,
		)
	}
	return size, nil
}

// Format renders a byte count as a short human-readable string,
// using the same 1024-based multipliers Parse accepts.
func Format(bytes int64) string {
	return units.BytesSize(float64(bytes))
}
