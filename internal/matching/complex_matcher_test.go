package matching

import (
	"testing"

	"estate-valuation/internal/domain"
)

func complexRef(id, name string) *domain.ResidentialComplex {
	return &domain.ResidentialComplex{
		ComplexID: id,
		City:      "Київ",
		Names: []domain.NameVariant{
			{Name: name, Language: domain.LangUK, IsCurrent: true},
		},
	}
}

func TestMatchComplex_SubstringInDescription(t *testing.T) {
	known := []*domain.ResidentialComplex{
		complexRef("c1", "ЖК Сонячний"),
		complexRef("c2", "ЖК Французький квартал"),
	}

	text := "Продам 2-кімнатну квартиру в ЖК Сонячний, поруч метро, гарний стан"
	m := MatchComplex(text, known, DefaultMinComplexConfidence)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Complex.ComplexID != "c1" {
		t.Errorf("expected complex c1, got %s", m.Complex.ComplexID)
	}
	if m.Type != MatchSubstring {
		t.Errorf("expected substring match, got %s", m.Type)
	}
	if m.Similarity < DefaultMinComplexConfidence {
		t.Errorf("similarity %v below min confidence", m.Similarity)
	}
}

func TestMatchComplex_ExactTitle(t *testing.T) {
	known := []*domain.ResidentialComplex{complexRef("c1", "ЖК Комфорт Таун")}

	m := MatchComplex("ЖК «Комфорт Таун»", known, DefaultMinComplexConfidence)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Type != MatchExact {
		t.Errorf("expected exact match, got %s", m.Type)
	}
	if m.Similarity != 1.0 {
		t.Errorf("expected similarity 1.0, got %v", m.Similarity)
	}
}

func TestMatchComplex_BelowConfidenceDiscarded(t *testing.T) {
	known := []*domain.ResidentialComplex{complexRef("c1", "ЖК Оазис")}

	// Nothing in the text resembles the complex name.
	m := MatchComplex("Оренда офісу в центрі міста, без комісії", known, DefaultMinComplexConfidence)
	if m != nil {
		t.Errorf("expected no match, got %+v", m)
	}
}

func TestMatchComplex_EmptyInputs(t *testing.T) {
	known := []*domain.ResidentialComplex{complexRef("c1", "ЖК Сонячний")}

	if m := MatchComplex("", known, DefaultMinComplexConfidence); m != nil {
		t.Errorf("expected no match on empty text, got %+v", m)
	}
	if m := MatchComplex("квартира в ЖК Сонячний", nil, DefaultMinComplexConfidence); m != nil {
		t.Errorf("expected no match on empty complex set, got %+v", m)
	}
}
