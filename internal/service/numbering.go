package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"orderdesk/backend/internal/domain"
)

const (
	NumberPrefixInvoice       = "INV-"
	NumberPrefixPurchaseOrder = "PO-"
)

// NextNumber allocates the next document number for a prefix given
// every number already issued. Values that do not parse as
// prefix+digits are ignored rather than treated as errors, so a
// manually entered number like "INV-DRAFT" never poisons the
// sequence. The numeric suffix is zero-padded to five digits and
// widens on its own past 99999.
func NextNumber(existing []string, prefix string) string {
	highest := int64(0)
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		n, err := strconv.ParseInt(number[len(prefix):], 10, 64)
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%05d", prefix, highest+1)
}

func numberPrefix(kind string) string {
	if kind == domain.OrderKindPurchaseOrder {
		return NumberPrefixPurchaseOrder
	}
	return NumberPrefixInvoice
}

func (s *Service) nextOrderNumber(ctx context.Context, kind string) (string, error) {
	numbers, err := s.repo.ListOrderNumbers(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("list order numbers: %w", err)
	}
	return NextNumber(numbers, numberPrefix(kind)), nil
}
