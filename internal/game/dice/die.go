package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDice indicates a die label or expression that cannot be rolled.
var ErrInvalidDice = errors.New("invalid dice")

// ParseDie parses a single-die label such as "d6" or "D12" into its number of sides.
//
// Postcondition: Returns sides >= 1, or an error wrapping ErrInvalidDice.
func ParseDie(label string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	if !strings.HasPrefix(s, "d") {
		return 0, fmt.Errorf("%w: die %q must have the form dN", ErrInvalidDice, label)
	}
	sides, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, fmt.Errorf("%w: die %q: %v", ErrInvalidDice, label, err)
	}
	if sides < 1 {
		return 0, fmt.Errorf("%w: die %q must have at least one side", ErrInvalidDice, label)
	}
	return sides, nil
}

// DieLabel renders sides back into the "dN" form accepted by ParseDie.
func DieLabel(sides int) string {
	return "d" + strconv.Itoa(sides)
}
