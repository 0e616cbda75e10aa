package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"

	"github.com/mbreban/nanarbase/internal/domain"
)

var (
	// listSeparatorRE splits multi-valued info fields: comma, ampersand,
	// slash, or the word "et" surrounded by whitespace.
	listSeparatorRE = regexp.MustCompile(`,|&|/|\set\s`)

	// yearRE matches a standalone run of exactly four digits.
	yearRE = regexp.MustCompile(`\b(\d{4})\b`)

	hoursRE   = regexp.MustCompile(`(\d+)h`)
	minutesRE = regexp.MustCompile(`(\d+)(m|$)`)

	// rarityLabelRE captures the label following the "… / Label" separator.
	rarityLabelRE = regexp.MustCompile(`/\s*(.+)`)

	escaleIDRE     = regexp.MustCompile(`N°(\d+)`)
	nanaroscopeRE  = regexp.MustCompile(`(?i)saison\s+(\d+)\s+[ée]pisode\s+(\d+)`)
	decimalCommaRE = regexp.MustCompile(`(\d),(\d)`)
)

// rarityLabels maps the site's seven rarity labels onto the canonical enum.
var rarityLabels = map[string]domain.Rarity{
	"Courant":             domain.RarityCommon,
	"Trouvable":           domain.RarityFindable,
	"Rare":                domain.RarityRare,
	"Exotique":            domain.RarityExotic,
	"Pièce de Collection": domain.RarityCollectorsItem,
	"Introuvable":         domain.RarityUnfindable,
	"Jamais Sorti":        domain.RarityNeverReleased,
}

// parseInfoMap turns "Label: value" lines into a label->text map. The first
// colon is the split point; the remainder is rejoined and trimmed, so values
// may themselves contain colons.
func parseInfoMap(lines []string) map[string]string {
	m := make(map[string]string, len(lines))
	for _, line := range lines {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if label != "" && value != "" {
			m[label] = value
		}
	}
	return m
}

// splitList splits a multi-valued field on the fixed separator set and trims
// each element.
func splitList(text string) []string {
	parts := listSeparatorRE.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// yearFromText extracts the last four-digit run from s. Absence of a year is
// not an error; the result is nil.
func yearFromText(s string) *int {
	matches := yearRE.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	y, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return nil
	}
	return &y
}

// convertToMinutes parses a runtime string into total minutes. Accepted
// forms: "2h30", "2h12m", "1h", "10m", and a bare integer meaning minutes.
func convertToMinutes(duration string) int {
	var hours, minutes int
	if m := hoursRE.FindStringSubmatch(duration); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := minutesRE.FindStringSubmatch(duration); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	}
	return hours*60 + minutes
}

// rarityFromText maps "… / <Label>" onto the rarity enum. A missing
// separator or an unrecognized label is a hard parse failure.
func rarityFromText(text string) (domain.Rarity, error) {
	m := rarityLabelRE.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("invalid rarity text: %q", text)
	}
	label := strings.TrimSpace(m[1])
	rarity, ok := rarityLabels[label]
	if !ok {
		return "", fmt.Errorf("invalid rarity label: %q", label)
	}
	return rarity, nil
}

// parseFloatText parses a displayed numeric value, tolerating the French
// decimal comma.
func parseFloatText(s string) (float64, error) {
	s = strings.TrimSpace(decimalCommaRE.ReplaceAllString(s, "$1.$2"))
	return strconv.ParseFloat(s, 64)
}

// escaleLongDateLayout is the long-date form used in escale captions,
// parsed with French month names ("3 juillet 2021").
const escaleLongDateLayout = "2 January 2006"

// parseEscaleCaption splits a composite escale caption into its id token
// ("N°<digits>"), the title before the first dash, and the trailing
// publication date. Every sub-field is required.
func parseEscaleCaption(caption string) (int64, string, time.Time, error) {
	m := escaleIDRE.FindStringSubmatch(caption)
	if m == nil {
		return 0, "", time.Time{}, fmt.Errorf("no id token in caption %q", caption)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("invalid id in caption %q: %w", caption, err)
	}

	first := strings.Index(caption, " - ")
	last := strings.LastIndex(caption, " - ")
	if first < 0 {
		return 0, "", time.Time{}, fmt.Errorf("malformed caption %q", caption)
	}
	title := strings.TrimSpace(caption[:first])
	if title == "" {
		return 0, "", time.Time{}, fmt.Errorf("empty title in caption %q", caption)
	}

	dateText := strings.TrimSpace(caption[last+3:])
	date, err := monday.ParseInLocation(escaleLongDateLayout, dateText, time.UTC, monday.LocaleFrFR)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("invalid date %q in caption: %w", dateText, err)
	}
	return id, title, date, nil
}

// parseNanaroscopeCaption derives the zero-padded season/episode code and the
// tagline following the colon from a nanaroscope caption.
func parseNanaroscopeCaption(caption string) (string, string, error) {
	m := nanaroscopeRE.FindStringSubmatch(caption)
	if m == nil {
		return "", "", fmt.Errorf("no season/episode in caption %q", caption)
	}
	season, _ := strconv.Atoi(m[1])
	episode, _ := strconv.Atoi(m[2])

	_, tagline, ok := strings.Cut(caption, ":")
	tagline = strings.TrimSpace(tagline)
	if !ok || tagline == "" {
		return "", "", fmt.Errorf("no tagline in caption %q", caption)
	}
	return fmt.Sprintf("S%02dE%02d", season, episode), tagline, nil
}
