package matching

import (
	"math"
	"testing"

	"github.com/agnivade/levenshtein"

	"estate-valuation/internal/domain"
)

func street(id string, names ...domain.NameVariant) *domain.Street {
	return &domain.Street{StreetID: id, City: "Київ", Names: names}
}

func current(name string, lang domain.Language) domain.NameVariant {
	return domain.NameVariant{Name: name, Language: lang, IsCurrent: true}
}

func historical(name string, lang domain.Language) domain.NameVariant {
	return domain.NameVariant{Name: name, Language: lang, IsCurrent: false}
}

func TestMatchStreet_ExactOnCurrentName(t *testing.T) {
	// Current name and near-identical historical name, input matches the
	// current one exactly.
	s := street("s1",
		current("Шевченка", domain.LangUK),
		historical("Шевченко", domain.LangRU),
	)

	m := MatchStreet("шевченка", []*domain.Street{s})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Type != MatchExact {
		t.Errorf("expected exact match, got %s", m.Type)
	}
	if m.IsOldName {
		t.Error("expected current name, got historical")
	}
	if m.Similarity != 1.0 {
		t.Errorf("expected similarity 1.0, got %v", m.Similarity)
	}
	if m.MatchedName != "Шевченка" {
		t.Errorf("expected matched name Шевченка, got %s", m.MatchedName)
	}
}

func TestMatchStreet_FuzzySingleEdit(t *testing.T) {
	// Input one rune short of the only candidate: distance 1 over max
	// length 8 gives similarity 0.875.
	s := street("s1", current("шевченко", domain.LangUK))

	m := MatchStreet("шевченк", []*domain.Street{s})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Type != MatchFuzzy {
		t.Errorf("expected fuzzy match, got %s", m.Type)
	}
	want := 1.0 - 1.0/8.0
	if math.Abs(m.Similarity-want) > 1e-9 {
		t.Errorf("expected similarity %v, got %v", want, m.Similarity)
	}
}

func TestMatchStreet_ExactBeatsFuzzy(t *testing.T) {
	// One candidate matches exactly, another would win the fuzzy stage.
	// The exact stage must take precedence.
	fuzzyOnly := street("s1", current("банкова", domain.LangUK))
	exact := street("s2", current("банковa", domain.LangUK)) // latin a at the end

	m := MatchStreet("банковa", []*domain.Street{fuzzyOnly, exact})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Type != MatchExact {
		t.Errorf("expected exact match, got %s", m.Type)
	}
	if m.Street.StreetID != "s2" {
		t.Errorf("expected street s2, got %s", m.Street.StreetID)
	}
}

func TestMatchStreet_FuzzyTieFirstSeenWins(t *testing.T) {
	// Both candidates are at distance 1. The first encountered wins.
	first := street("s1", current("мирна", domain.LangUK))
	second := street("s2", current("мирка", domain.LangUK))

	m := MatchStreet("мирта", []*domain.Street{first, second})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Street.StreetID != "s1" {
		t.Errorf("expected first-seen street s1, got %s", m.Street.StreetID)
	}
}

func TestMatchStreet_SubstringStage(t *testing.T) {
	s := street("s1", current("Хрещатик", domain.LangUK))

	m := MatchStreet("вулиця хрещатик київ", []*domain.Street{s})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Type != MatchSubstring {
		t.Errorf("expected substring match, got %s", m.Type)
	}
	if m.Similarity != 0.7 {
		t.Errorf("expected similarity 0.7, got %v", m.Similarity)
	}
}

func TestMatchStreet_None(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		streets []*domain.Street
	}{
		{"empty input", "", []*domain.Street{street("s1", current("Шевченка", domain.LangUK))}},
		{"empty candidate set", "шевченка", nil},
		{"input too short", "аб", []*domain.Street{street("s1", current("Шевченка", domain.LangUK))}},
		{"all candidates too short", "шевченка", []*domain.Street{street("s1", current("аб", domain.LangUK))}},
		{"nothing close", "шевченка", []*domain.Street{street("s1", current("перемоги", domain.LangUK))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m := MatchStreet(tt.input, tt.streets); m != nil {
				t.Errorf("expected no match, got %+v", m)
			}
		})
	}
}

func TestMatchStreet_HistoricalNameTagged(t *testing.T) {
	s := street("s1",
		current("Небесної Сотні", domain.LangUK),
		historical("Жовтнева", domain.LangUK),
	)

	m := MatchStreet("жовтнева", []*domain.Street{s})
	if m == nil {
		t.Fatal("expected a match")
	}
	if !m.IsOldName {
		t.Error("expected historical name to be tagged isOldName")
	}
}

func TestMatchStreet_Deterministic(t *testing.T) {
	streets := []*domain.Street{
		street("s1", current("Шевченка", domain.LangUK), historical("Шевченко", domain.LangRU)),
		street("s2", current("Франка", domain.LangUK)),
	}

	first := MatchStreet("шевченк", streets)
	for i := 0; i < 10; i++ {
		got := MatchStreet("шевченк", streets)
		if got == nil || first == nil {
			t.Fatal("expected matches on every run")
		}
		if got.Street.StreetID != first.Street.StreetID || got.Similarity != first.Similarity {
			t.Fatalf("non-deterministic result on run %d", i)
		}
	}
}

func TestLevenshtein_MetricProperties(t *testing.T) {
	words := []string{"шевченка", "шевченко", "франка", "хрещатик", ""}

	for _, a := range words {
		if d := levenshtein.ComputeDistance(a, a); d != 0 {
			t.Errorf("distance(%q,%q) = %d, want 0", a, a, d)
		}
		for _, b := range words {
			ab := levenshtein.ComputeDistance(a, b)
			ba := levenshtein.ComputeDistance(b, a)
			if ab != ba {
				t.Errorf("distance not symmetric: %q/%q %d != %d", a, b, ab, ba)
			}
			for _, c := range words {
				ac := levenshtein.ComputeDistance(a, c)
				cb := levenshtein.ComputeDistance(c, b)
				if ab > ac+cb {
					t.Errorf("triangle inequality violated for %q %q %q", a, b, c)
				}
			}
		}
	}
}
