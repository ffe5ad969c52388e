package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a relationship kind name is not recognized.
var ErrUnknownKind = errors.New("unknown relationship kind")

// Kind classifies a directed relationship between two companies.
type Kind string

const (
	KindCustomer   Kind = "customer"
	KindSupplier   Kind = "supplier"
	KindInvestor   Kind = "investor"
	KindInvestee   Kind = "investee"
	KindPartner    Kind = "partner"
	KindCompetitor Kind = "competitor"
	KindUnknown    Kind = "unknown"
)

// Known lists every kind that may appear in a built graph, in display order.
func Known() []Kind {
	return []Kind{KindCustomer, KindSupplier, KindInvestor, KindInvestee, KindPartner, KindCompetitor}
}

// Reciprocal returns the kind observed from the other end of the relationship.
func (k Kind) Reciprocal() Kind {
	switch k {
	case KindCustomer:
		return KindSupplier
	case KindSupplier:
		return KindCustomer
	case KindInvestor:
		return KindInvestee
	case KindInvestee:
		return KindInvestor
	default:
		return k
	}
}

// IsKnown reports whether k is one of the six traversable kinds.
func (k Kind) IsKnown() bool {
	switch k {
	case KindCustomer, KindSupplier, KindInvestor, KindInvestee, KindPartner, KindCompetitor:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	if k == "" {
		return string(KindUnknown)
	}
	return string(k)
}

// ParseKind maps a raw dataset label to a Kind. Matching is case-insensitive
// but otherwise exact: the links dataset uses "investment" for investor edges
// and "partnership" for partner edges, and any other label maps to KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "customer":
		return KindCustomer
	case "supplier":
		return KindSupplier
	case "investment":
		return KindInvestor
	case "investee":
		return KindInvestee
	case "partnership":
		return KindPartner
	case "competitor":
		return KindCompetitor
	default:
		return KindUnknown
	}
}

// KindFromString parses a configured kind name strictly. It accepts the
// canonical kind names as well as the dataset labels.
func KindFromString(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch Kind(name) {
	case KindUnknown:
		return KindUnknown, nil
	case KindCustomer, KindSupplier, KindInvestor, KindInvestee, KindPartner, KindCompetitor:
		return Kind(name), nil
	}
	if k := ParseKind(name); k != KindUnknown {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// KindsFromStrings parses a list of configured kind names.
func KindsFromStrings(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := KindFromString(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
