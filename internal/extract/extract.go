// Package extract parses raw article markup into minimal metadata.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/notesignal/article-tracker/internal/article"
)

// minDatetimeLen is the shortest machine-readable datetime attribute that can
// carry a full YYYY-MM-DD date.
const minDatetimeLen = 10

// Metadata extracts the document title and publication date from raw markup.
// It is a pure function and never fails: fields that cannot be found come back
// empty and the caller substitutes its fallbacks. Unparseable input degrades
// to an empty Metadata for the same reason.
func Metadata(markup []byte) article.Metadata {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return article.Metadata{}
	}

	meta := article.Metadata{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	// The first time element with a usable machine-readable date wins,
	// scanning in document order. Longer attributes (full timestamps,
	// offsets) contribute only their date prefix.
	doc.Find("time").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		attr, ok := sel.Attr("datetime")
		if !ok || len(attr) < minDatetimeLen {
			return true
		}
		meta.PublicationDate = attr[:minDatetimeLen]
		return false
	})

	return meta
}
