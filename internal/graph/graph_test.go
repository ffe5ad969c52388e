package graph

import (
	"encoding/json"
	"errors"
	"testing"
)

var (
	companyA = Company{Name: "CompanyA", Domain: "companya.com"}
	companyB = Company{Name: "CompanyB", Domain: "companyb.com"}
	companyC = Company{Name: "CompanyC", Domain: "companyc.com"}
)

func TestRelationship_Reciprocal(t *testing.T) {
	original := Relationship{
		ID:        "123",
		Tail:      companyA,
		Head:      companyB,
		Kind:      KindCustomer,
		UpdatedAt: "2021-04-01",
	}

	r := original.Reciprocal()

	if r.Tail != original.Head || r.Head != original.Tail {
		t.Errorf("reciprocal endpoints not flipped: %+v", r)
	}
	if r.Kind != KindSupplier {
		t.Errorf("expected supplier, got %s", r.Kind)
	}
	if r.ID != "123-RECI" {
		t.Errorf("expected id 123-RECI, got %s", r.ID)
	}
	if r.UpdatedAt != original.UpdatedAt {
		t.Errorf("expected timestamp to be kept, got %s", r.UpdatedAt)
	}
}

func TestCompany_IsComparableKey(t *testing.T) {
	m := map[Company]int{companyA: 1}
	if m[Company{Name: "CompanyA", Domain: "companya.com"}] != 1 {
		t.Error("equal companies should hash to the same key")
	}
	if _, ok := m[Company{Name: "CompanyA", Domain: "other.com"}]; ok {
		t.Error("companies with different domains must differ")
	}
}

func TestBuilder_AddStoresMirror(t *testing.T) {
	b := NewBuilder()
	if err := b.Add(Relationship{ID: "1", Tail: companyA, Head: companyB, Kind: KindCustomer, UpdatedAt: "2021-04-01"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := b.Build()

	if g.Len() != 2 {
		t.Fatalf("expected 2 companies, got %d", g.Len())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 directed edges, got %d", g.EdgeCount())
	}

	fromB := g.Relationships(companyB)
	if len(fromB) != 1 {
		t.Fatalf("expected 1 relationship from B, got %d", len(fromB))
	}
	if fromB[0].Kind != KindSupplier || fromB[0].Head != companyA {
		t.Errorf("unexpected mirror %+v", fromB[0])
	}
}

func TestBuilder_EveryRelationshipHasMirror(t *testing.T) {
	b := NewBuilder()
	rels := []Relationship{
		{ID: "1", Tail: companyA, Head: companyB, Kind: KindCustomer},
		{ID: "2", Tail: companyB, Head: companyC, Kind: KindInvestor},
		{ID: "3", Tail: companyC, Head: companyA, Kind: KindCompetitor},
		{ID: "4", Tail: companyA, Head: companyB, Kind: KindPartner},
	}
	for _, r := range rels {
		if err := b.Add(r); err != nil {
			t.Fatalf("add %s: %v", r.ID, err)
		}
	}
	g := b.Build()

	for _, c := range g.Companies() {
		for _, r := range g.Relationships(c) {
			if r.Tail != c {
				t.Errorf("relationship %s stored under %s has tail %s", r.ID, c, r.Tail)
			}
			if !g.Has(r.Head) {
				t.Errorf("head %s of %s is not a key", r.Head, r.ID)
			}
			found := false
			for _, m := range g.Relationships(r.Head) {
				if m.Head == r.Tail && m.Kind == r.Kind.Reciprocal() && m.UpdatedAt == r.UpdatedAt {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("no mirror for %s (%s -> %s)", r.ID, r.Tail, r.Head)
			}
		}
	}
}

func TestBuilder_Rejects(t *testing.T) {
	b := NewBuilder()

	err := b.Add(Relationship{ID: "1", Tail: companyA, Head: companyB, Kind: KindUnknown})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}

	err = b.Add(Relationship{ID: "2", Tail: Company{}, Head: companyB, Kind: KindCustomer})
	if !errors.Is(err, ErrInvalidRelationship) {
		t.Errorf("expected ErrInvalidRelationship, got %v", err)
	}

	if b.Len() != 0 {
		t.Errorf("rejected relationships should not be stored, got %d", b.Len())
	}

	g := b.Build()
	if g.Len() != 0 {
		t.Errorf("expected empty graph, got %d companies", g.Len())
	}

	err = b.Add(Relationship{ID: "3", Tail: companyA, Head: companyB, Kind: KindCustomer})
	if !errors.Is(err, ErrGraphBuilt) {
		t.Errorf("expected ErrGraphBuilt, got %v", err)
	}
}

func TestGraph_MissingCompany(t *testing.T) {
	g := NewBuilder().Build()
	if rels := g.Relationships(companyA); len(rels) != 0 {
		t.Errorf("expected no relationships, got %v", rels)
	}
	if g.Has(companyA) {
		t.Error("empty graph should not have company")
	}

	var nilGraph *Graph
	if nilGraph.Len() != 0 || nilGraph.Relationships(companyA) != nil {
		t.Error("nil graph should behave as empty")
	}
}

func TestGraph_CompaniesSorted(t *testing.T) {
	b := NewBuilder()
	_ = b.Add(Relationship{ID: "1", Tail: companyC, Head: companyA, Kind: KindPartner})
	_ = b.Add(Relationship{ID: "2", Tail: companyB, Head: companyA, Kind: KindPartner})
	g := b.Build()

	got := g.Companies()
	want := []Company{companyA, companyB, companyC}
	if len(got) != len(want) {
		t.Fatalf("expected %d companies, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("companies[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGraph_JSONRebuildsMirrors(t *testing.T) {
	b := NewBuilder()
	_ = b.Add(Relationship{ID: "1", Tail: companyA, Head: companyB, Kind: KindInvestor, UpdatedAt: "2022-01-01"})
	_ = b.Add(Relationship{ID: "2", Tail: companyB, Head: companyC, Kind: KindCustomer, UpdatedAt: "2022-01-02"})
	original := b.Build()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Len() != original.Len() || decoded.EdgeCount() != original.EdgeCount() {
		t.Fatalf("decoded graph differs: %d/%d companies, %d/%d edges",
			decoded.Len(), original.Len(), decoded.EdgeCount(), original.EdgeCount())
	}
	fromB := decoded.Relationships(companyB)
	if len(fromB) != 2 || fromB[0].Kind != KindInvestee || fromB[0].ID != "1-RECI" {
		t.Errorf("unexpected relationships from B: %+v", fromB)
	}
}

func TestGraph_UnmarshalRejectsUnknownKind(t *testing.T) {
	data := []byte(`{"relationships":[{"id":"1","tail":{"name":"A"},"head":{"name":"B"},"kind":"vendor"}]}`)
	var g Graph
	if err := json.Unmarshal(data, &g); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
