package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Selectors addressing the chronicle page structure. They are fixed: the
// pipeline targets a single site with a stable layout.
const (
	selChronicleLinks = "a.itemFigure.titlePrimary"
	selMainTitle      = "h1.mainTitle"
	selInfos          = "body > main > div.mainInner > div > div:nth-child(1) > div.row > div.col-12.col-md-8.col-lg-8 > p"
	selCreationYear   = "body > main > div.mainInner > div > div:nth-child(1) > small"
	selGenre          = "body > main > div.mainInner > nav > ol > li:nth-child(3) > a"
	selSubgenre       = "body > main > div.mainInner > nav > ol > li:nth-child(4) > a"
	selPoster         = "body > main > div.mainInner > div > div:nth-child(1) > div.row > div.col-12.col-md-4.col-lg-4.mb-3.mb-md-0 > img"
	selAverageRating  = "#notes > div.d-inline-block.bg-primary.text-white.font-weight-bold.py-3.px-4.mb-1 > span"
	selRarity         = "#cote-rarete > h3"
	selAuthor         = "#redacteur > div > a"
	selAuthorAvatar   = "#redacteur > div > img"
	selUserRatings    = "#notes > ul > li"
)

// Info-block labels, keyed exactly as printed on the page.
const (
	labelOriginalTitle     = "Titre original"
	labelAlternativeTitles = "Titre(s) alternatif(s)"
	labelDirectors         = "Réalisateur(s)"
	labelReleaseYear       = "Année"
	labelOriginCountries   = "Nationalité"
	labelRuntime           = "Durée"

	// noneAlternativeTitles is the placeholder printed when a chronicle has
	// no alternative titles.
	noneAlternativeTitles = "Aucun"
)

// Extractor turns rendered chronicle documents into RawReview values. All
// getters are pure functions of the document and the page URL; required
// fields fail with an *ExtractionError, optional fields yield nil.
type Extractor struct {
	baseURL string
}

// NewExtractor constructs an Extractor resolving relative links against
// baseURL (scheme+host of the source site).
func NewExtractor(baseURL string) *Extractor {
	return &Extractor{baseURL: strings.TrimRight(baseURL, "/")}
}

// ChronicleLinks returns the hrefs of every chronicle listed on the index
// document, in page order.
func (e *Extractor) ChronicleLinks(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find(selChronicleLinks).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// AbsoluteURL resolves a site-relative href against the extractor's base URL.
func (e *Extractor) AbsoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return e.baseURL + href
}

// Extract produces the RawReview for one chronicle document. pageURL is the
// absolute URL of the document, used for link resolution and error context.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) (*RawReview, error) {
	infos := e.infoMap(doc)

	raw := &RawReview{Link: pageURL}

	title, err := e.text(doc, pageURL, selMainTitle, "main title")
	if err != nil {
		return nil, err
	}
	raw.Title = title

	genre, err := e.breadcrumb(doc, pageURL, selGenre, "genre")
	if err != nil {
		return nil, err
	}
	raw.Genre = genre

	subgenre, err := e.breadcrumb(doc, pageURL, selSubgenre, "subgenre")
	if err != nil {
		return nil, err
	}
	raw.Subgenre = subgenre

	// Creation year is optional: some chronicles carry no publication note.
	if note := strings.TrimSpace(doc.Find(selCreationYear).First().Text()); note != "" {
		raw.CreationYear = yearFromText(note)
	}
	if raw.CreationYear == nil {
		log.Debug().Str("url", pageURL).Msg("no publication year available")
	}

	if v, ok := infos[labelOriginalTitle]; ok {
		raw.OriginalTitle = &v
	}
	if v, ok := infos[labelAlternativeTitles]; ok && v != noneAlternativeTitles {
		raw.AlternativeTitles = splitList(v)
	}

	directorsText, ok := infos[labelDirectors]
	if !ok {
		return nil, extractionErr(pageURL, labelDirectors, "")
	}
	raw.Directors = splitList(directorsText)

	if v, ok := infos[labelReleaseYear]; ok {
		raw.ReleaseYear = yearFromText(v)
	}

	countriesText, ok := infos[labelOriginCountries]
	if !ok {
		return nil, extractionErr(pageURL, labelOriginCountries, "")
	}
	raw.OriginCountries = splitList(countriesText)

	runtimeText, ok := infos[labelRuntime]
	if !ok {
		return nil, extractionErr(pageURL, labelRuntime, "")
	}
	raw.RuntimeMinutes = convertToMinutes(runtimeText)

	poster, ok := doc.Find(selPoster).First().Attr("src")
	if !ok || strings.TrimSpace(poster) == "" {
		return nil, extractionErr(pageURL, "poster", "")
	}
	raw.PosterURL = e.AbsoluteURL(strings.TrimSpace(poster))

	ratingText, err := e.text(doc, pageURL, selAverageRating, "average rating")
	if err != nil {
		return nil, err
	}
	avg, perr := parseFloatText(ratingText)
	if perr != nil {
		return nil, extractionErr(pageURL, "average rating", ratingText)
	}
	raw.AverageRating = avg

	rarityText, err := e.text(doc, pageURL, selRarity, "rarity")
	if err != nil {
		return nil, err
	}
	rarity, rerr := rarityFromText(rarityText)
	if rerr != nil {
		return nil, extractionErr(pageURL, "rarity", rarityText)
	}
	raw.Rarity = rarity

	author, err := e.author(doc, pageURL)
	if err != nil {
		return nil, err
	}
	raw.Author = author
	raw.UserRatings = e.userRatings(doc)

	raw.CutVideos, err = e.cutVideos(doc, pageURL)
	if err != nil {
		return nil, err
	}
	raw.EscaleVideos, err = e.escaleVideos(doc, pageURL)
	if err != nil {
		return nil, err
	}
	raw.NanaroscopeVideos, err = e.nanaroscopeVideos(doc, pageURL)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("url", pageURL).Str("title", raw.Title).Msg("chronicle extracted")
	return raw, nil
}

// infoMap collects the "Label: value" paragraphs of the info block.
func (e *Extractor) infoMap(doc *goquery.Document) map[string]string {
	var lines []string
	doc.Find(selInfos).Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, strings.TrimSpace(s.Text()))
	})
	return parseInfoMap(lines)
}

// text returns the trimmed text of the first node matching sel, or an
// ExtractionError when the node is absent or empty.
func (e *Extractor) text(doc *goquery.Document, pageURL, sel, field string) (string, error) {
	t := strings.TrimSpace(doc.Find(sel).First().Text())
	if t == "" {
		return "", extractionErr(pageURL, field, "")
	}
	return t, nil
}

// breadcrumb reads a genre-level breadcrumb anchor: both its text and href
// are required.
func (e *Extractor) breadcrumb(doc *goquery.Document, pageURL, sel, field string) (RawGenre, error) {
	node := doc.Find(sel).First()
	title := strings.TrimSpace(node.Text())
	href, _ := node.Attr("href")
	if title == "" || href == "" {
		return RawGenre{}, extractionErr(pageURL, field, "")
	}
	return RawGenre{Title: title, Link: e.AbsoluteURL(href)}, nil
}

// author reads the chronicle author's username and avatar. The username is
// required; the avatar may be absent.
func (e *Extractor) author(doc *goquery.Document, pageURL string) (RawUser, error) {
	username := strings.TrimSpace(doc.Find(selAuthor).First().Text())
	if username == "" {
		return RawUser{}, extractionErr(pageURL, "author", "")
	}
	avatar, _ := doc.Find(selAuthorAvatar).First().Attr("src")
	if avatar != "" {
		avatar = e.AbsoluteURL(avatar)
	}
	return RawUser{Username: username, AvatarURL: avatar}, nil
}

// userRatings reads the per-user rating list. Entries with a non-numeric
// displayed value keep a nil rating; the reconciler filters them out.
func (e *Extractor) userRatings(doc *goquery.Document) []RawUserRating {
	var ratings []RawUserRating
	doc.Find(selUserRatings).Each(func(_ int, s *goquery.Selection) {
		username := strings.TrimSpace(s.Find("a").First().Text())
		if username == "" {
			return
		}
		avatar, _ := s.Find("img").First().Attr("src")
		if avatar != "" {
			avatar = e.AbsoluteURL(avatar)
		}
		entry := RawUserRating{User: RawUser{Username: username, AvatarURL: avatar}}
		if v, err := parseFloatText(s.Find("span.note").First().Text()); err == nil {
			entry.Rating = &v
		}
		ratings = append(ratings, entry)
	})
	return ratings
}
