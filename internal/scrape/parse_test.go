package scrape

import (
	"testing"
	"time"

	"github.com/mbreban/nanarbase/internal/domain"
)

func TestConvertToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2h30", 150},
		{"2h12m", 132},
		{"1h", 60},
		{"10m", 10},
		{"25", 25},
	}
	for _, c := range cases {
		if got := convertToMinutes(c.in); got != c.want {
			t.Errorf("convertToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestYearFromText(t *testing.T) {
	if y := yearFromText("Sorti le 14 juillet 1994"); y == nil || *y != 1994 {
		t.Fatalf("expected 1994, got %v", y)
	}
	if y := yearFromText("Chronique de 1998, mise à jour en 2004"); y == nil || *y != 2004 {
		t.Fatalf("expected last year 2004, got %v", y)
	}
	if y := yearFromText("Date inconnue"); y != nil {
		t.Fatalf("expected nil for text without year, got %d", *y)
	}
}

func TestRarityFromText(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Rarity
	}{
		{"Cote de rareté / Courant", domain.RarityCommon},
		{"Cote de rareté / Trouvable", domain.RarityFindable},
		{"Cote de rareté / Rare", domain.RarityRare},
		{"Cote de rareté / Exotique", domain.RarityExotic},
		{"Cote de rareté / Pièce de Collection", domain.RarityCollectorsItem},
		{"Cote de rareté / Introuvable", domain.RarityUnfindable},
		{"Cote de rareté / Jamais Sorti", domain.RarityNeverReleased},
	}
	for _, c := range cases {
		got, err := rarityFromText(c.in)
		if err != nil {
			t.Errorf("rarityFromText(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("rarityFromText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRarityFromText_Invalid(t *testing.T) {
	if _, err := rarityFromText("Cote de rareté / Unknown"); err == nil {
		t.Fatal("expected error for unknown label")
	}
	if _, err := rarityFromText("Courant"); err == nil {
		t.Fatal("expected error for missing separator")
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"France, Italie", []string{"France", "Italie"}},
		{"John Woo & Tsui Hark", []string{"John Woo", "Tsui Hark"}},
		{"Hong Kong/Chine", []string{"Hong Kong", "Chine"}},
		{"Jean Rollin et Jess Franco", []string{"Jean Rollin", "Jess Franco"}},
		{"Solo", []string{"Solo"}},
	}
	for _, c := range cases {
		got := splitList(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitList(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitList(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestParseInfoMap(t *testing.T) {
	lines := []string{
		"Titre original : Jaguar Force",
		"Durée : 1h25",
		"Note : valeur : avec deux-points",
		"pas de label",
	}
	m := parseInfoMap(lines)
	if m["Titre original"] != "Jaguar Force" {
		t.Errorf("unexpected original title %q", m["Titre original"])
	}
	if m["Durée"] != "1h25" {
		t.Errorf("unexpected duration %q", m["Durée"])
	}
	if m["Note"] != "valeur : avec deux-points" {
		t.Errorf("value should keep inner colons, got %q", m["Note"])
	}
	if len(m) != 3 {
		t.Errorf("expected 3 entries, got %d", len(m))
	}
}

func TestParseFloatText(t *testing.T) {
	if v, err := parseFloatText("4,5"); err != nil || v != 4.5 {
		t.Fatalf("expected 4.5, got %v err=%v", v, err)
	}
	if v, err := parseFloatText(" 3.25 "); err != nil || v != 3.25 {
		t.Fatalf("expected 3.25, got %v err=%v", v, err)
	}
	if _, err := parseFloatText("n/a"); err == nil {
		t.Fatal("expected error for non-numeric text")
	}
}

func TestParseEscaleCaption(t *testing.T) {
	id, title, date, err := parseEscaleCaption("Escale à Nanarland N°42 - 3 juillet 2021")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
	if title != "Escale à Nanarland N°42" {
		t.Errorf("title = %q", title)
	}
	want := time.Date(2021, time.July, 3, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("date = %v, want %v", date, want)
	}
}

func TestParseEscaleCaption_Invalid(t *testing.T) {
	cases := []string{
		"Escale sans numéro - 3 juillet 2021",
		"Escale à Nanarland N°42",
		"Escale à Nanarland N°42 - pas une date",
	}
	for _, c := range cases {
		if _, _, _, err := parseEscaleCaption(c); err == nil {
			t.Errorf("expected error for %q", c)
		}
	}
}

func TestParseNanaroscopeCaption(t *testing.T) {
	code, tagline, err := parseNanaroscopeCaption("Nanaroscope - Saison 2 Episode 5 : Les ninjas de l'espace")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if code != "S02E05" {
		t.Errorf("code = %q, want S02E05", code)
	}
	if tagline != "Les ninjas de l'espace" {
		t.Errorf("tagline = %q", tagline)
	}

	code, _, err = parseNanaroscopeCaption("Saison 10 épisode 12 : accentué")
	if err != nil {
		t.Fatalf("parse accented form: %v", err)
	}
	if code != "S10E12" {
		t.Errorf("code = %q, want S10E12", code)
	}
}

func TestParseNanaroscopeCaption_Invalid(t *testing.T) {
	if _, _, err := parseNanaroscopeCaption("Episode 5 : sans saison"); err == nil {
		t.Fatal("expected error for missing season")
	}
	if _, _, err := parseNanaroscopeCaption("Saison 1 Episode 2 sans tagline"); err == nil {
		t.Fatal("expected error for missing tagline")
	}
}
