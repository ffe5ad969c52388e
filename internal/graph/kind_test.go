package graph

import (
	"errors"
	"testing"
)

func TestKind_Reciprocal(t *testing.T) {
	tests := []struct {
		kind Kind
		want Kind
	}{
		{KindCustomer, KindSupplier},
		{KindSupplier, KindCustomer},
		{KindInvestor, KindInvestee},
		{KindInvestee, KindInvestor},
		{KindPartner, KindPartner},
		{KindCompetitor, KindCompetitor},
		{KindUnknown, KindUnknown},
	}
	for _, tt := range tests {
		if got := tt.kind.Reciprocal(); got != tt.want {
			t.Errorf("%s.Reciprocal() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestKind_ReciprocalIsInvolution(t *testing.T) {
	for _, k := range append(Known(), KindUnknown) {
		if got := k.Reciprocal().Reciprocal(); got != k {
			t.Errorf("%s.Reciprocal().Reciprocal() = %s", k, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"customer", KindCustomer},
		{"supplier", KindSupplier},
		{"investment", KindInvestor},
		{"investee", KindInvestee},
		{"partnership", KindPartner},
		{"competitor", KindCompetitor},
		{"Customer", KindCustomer},
		{"COMPETITOR", KindCompetitor},
		{" customer", KindUnknown},
		{"competitor ", KindUnknown},
		{"investor", KindUnknown},
		{"partner", KindUnknown},
		{"some other value", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKindFromString(t *testing.T) {
	k, err := KindFromString("partner")
	if err != nil || k != KindPartner {
		t.Errorf("KindFromString(partner) = %s, %v", k, err)
	}

	k, err = KindFromString(" Investor ")
	if err != nil || k != KindInvestor {
		t.Errorf("KindFromString(investor) = %s, %v", k, err)
	}

	k, err = KindFromString("partnership")
	if err != nil || k != KindPartner {
		t.Errorf("KindFromString(partnership) = %s, %v", k, err)
	}

	k, err = KindFromString("unknown")
	if err != nil || k != KindUnknown {
		t.Errorf("KindFromString(unknown) = %s, %v", k, err)
	}

	_, err = KindFromString("vendor")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKindsFromStrings(t *testing.T) {
	kinds, err := KindsFromStrings([]string{"customer", "investment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != KindCustomer || kinds[1] != KindInvestor {
		t.Errorf("unexpected kinds %v", kinds)
	}

	kinds, err = KindsFromStrings(nil)
	if err != nil || len(kinds) != 0 {
		t.Errorf("expected empty list, got %v, %v", kinds, err)
	}

	if _, err := KindsFromStrings([]string{"customer", "bogus"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKind_IsKnown(t *testing.T) {
	for _, k := range Known() {
		if !k.IsKnown() {
			t.Errorf("%s should be known", k)
		}
	}
	if KindUnknown.IsKnown() {
		t.Error("unknown should not be known")
	}
	if Kind("").IsKnown() {
		t.Error("empty kind should not be known")
	}
	if Kind("").String() != "unknown" {
		t.Errorf("empty kind renders as %q", Kind("").String())
	}
}
