package enums

import (
	"fmt"
	"strings"
)

// TransactionDirection marks whether a stock movement adds or removes quantity.
type TransactionDirection string

const (
	TransactionDirectionIn  TransactionDirection = "in"
	TransactionDirectionOut TransactionDirection = "out"
)

var validTransactionDirections = []TransactionDirection{
	TransactionDirectionIn,
	TransactionDirectionOut,
}

func (d TransactionDirection) String() string {
	return string(d)
}

func (d TransactionDirection) IsValid() bool {
	for _, candidate := range validTransactionDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// Sign returns +1 for inbound and -1 for outbound movements.
func (d TransactionDirection) Sign() int {
	if d == TransactionDirectionOut {
		return -1
	}
	return 1
}

func ParseTransactionDirection(value string) (TransactionDirection, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validTransactionDirections {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction direction %q", value)
}
