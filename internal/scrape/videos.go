package scrape

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Video block selectors. Each section hosts zero or more figures; within a
// figure the caption carries the textual metadata.
const (
	selCutVideos         = "#extraits > div > figure"
	selEscaleVideos      = "#escales > div > figure"
	selNanaroscopeVideos = "#nanaroscope > div > figure"
)

// cutVideos extracts every excerpt video of the document. A block that is
// present but missing any required sub-field fails the whole extraction.
func (e *Extractor) cutVideos(doc *goquery.Document, pageURL string) ([]RawCutVideo, error) {
	var (
		videos []RawCutVideo
		extErr error
	)
	doc.Find(selCutVideos).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		idText, _ := s.Find("video").First().Attr("data-id")
		id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
		if err != nil {
			extErr = extractionErr(pageURL, "cut video id", idText)
			return false
		}

		title := strings.TrimSpace(s.Find("figcaption > span.title").First().Text())
		if title == "" {
			extErr = extractionErr(pageURL, "cut video title", "")
			return false
		}

		ratingText := s.Find("figcaption > span.note").First().Text()
		rating, err := parseFloatText(ratingText)
		if err != nil {
			extErr = extractionErr(pageURL, "cut video rating", ratingText)
			return false
		}

		var links []RawMediaLink
		s.Find("video > source").Each(func(_ int, src *goquery.Selection) {
			href, _ := src.Attr("src")
			typ, _ := src.Attr("type")
			if href != "" {
				links = append(links, RawMediaLink{Src: e.AbsoluteURL(href), Type: typ})
			}
		})
		if len(links) == 0 {
			extErr = extractionErr(pageURL, "cut video sources", title)
			return false
		}

		videos = append(videos, RawCutVideo{
			ID:            id,
			Title:         title,
			AverageRating: rating,
			Links:         links,
		})
		return true
	})
	if extErr != nil {
		return nil, extErr
	}
	return videos, nil
}

// escaleVideos extracts the "escale" episode blocks. The id, title and
// publication date all come from the composite caption; the page link comes
// from the figure's anchor.
func (e *Extractor) escaleVideos(doc *goquery.Document, pageURL string) ([]RawEscaleVideo, error) {
	var (
		videos []RawEscaleVideo
		extErr error
	)
	doc.Find(selEscaleVideos).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		caption := strings.TrimSpace(s.Find("figcaption").First().Text())
		id, title, date, err := parseEscaleCaption(caption)
		if err != nil {
			extErr = extractionErr(pageURL, "escale caption", caption)
			return false
		}

		href, _ := s.Find("a").First().Attr("href")
		if href == "" {
			extErr = extractionErr(pageURL, "escale link", caption)
			return false
		}

		videos = append(videos, RawEscaleVideo{
			ID:              id,
			Title:           title,
			PageLink:        e.AbsoluteURL(href),
			PublicationDate: date,
		})
		return true
	})
	if extErr != nil {
		return nil, extErr
	}
	return videos, nil
}

// nanaroscopeVideos extracts the "nanaroscope" episode blocks, reducing each
// caption to its S##E## code and tagline.
func (e *Extractor) nanaroscopeVideos(doc *goquery.Document, pageURL string) ([]RawNanaroscopeVideo, error) {
	var (
		videos []RawNanaroscopeVideo
		extErr error
	)
	doc.Find(selNanaroscopeVideos).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		caption := strings.TrimSpace(s.Find("figcaption").First().Text())
		code, tagline, err := parseNanaroscopeCaption(caption)
		if err != nil {
			extErr = extractionErr(pageURL, "nanaroscope caption", caption)
			return false
		}
		videos = append(videos, RawNanaroscopeVideo{Code: code, Tagline: tagline})
		return true
	})
	if extErr != nil {
		return nil, extErr
	}
	return videos, nil
}
