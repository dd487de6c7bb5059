package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases latin", "Main Street", "main street"},
		{"lowercases cyrillic", "Вулиця ШЕВЧЕНКА", "вулиця шевченка"},
		{"strips punctuation", "вул. Шевченка, 12", "вул шевченка 12"},
		{"collapses whitespace", "  просп.   Перемоги  ", "просп перемоги"},
		{"strips diacritics", "Charlottenstraße café", "charlottenstraße cafe"},
		{"keeps cyrillic letters intact", "Єреванська", "єреванська"},
		{"hyphens become spaces", "Кам'янець-Подільська", "кам янець подільська"},
		{"digits kept", "ЖК Комфорт 7", "жк комфорт 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Вул. Шевченка", "ЖК «Сонячний»", "  Main-Street  12a "}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent on %q: %q != %q", in, twice, once)
		}
	}
}

func TestUsable(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"ab", false},
		{"abc", true},
		{"жк", false},   // 2 runes, 4 bytes
		{"мир", true},   // 3 runes
		{"вул", true},
	}

	for _, tt := range tests {
		if got := Usable(tt.in); got != tt.want {
			t.Errorf("Usable(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("шевченко"); got != 8 {
		t.Errorf("RuneLen(шевченко) = %d, want 8", got)
	}
	if got := RuneLen("abc"); got != 3 {
		t.Errorf("RuneLen(abc) = %d, want 3", got)
	}
}
