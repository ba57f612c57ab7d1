package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/agrodata/pestreg/models"
)

// Compiled matchers for the overlay document. The ingredient sub-table is
// always the second table of the overlay body.
var (
	labelCells     = cascadia.MustCompile("td")
	ingredientRows = cascadia.MustCompile("table:nth-of-type(2) tr")
)

// parseOverlay extracts one registration record from the serialized detail
// overlay. Missing labels yield empty fields, never an error: the overlay
// layout varies between entries.
func parseOverlay(overlayHTML string) (models.RegistrationRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(overlayHTML))
	if err != nil {
		return models.RegistrationRecord{}, err
	}

	rec := models.RegistrationRecord{
		RegisteredNumber:   fieldValue(doc, labelRegisteredNumber),
		FirstProve:         fieldValue(doc, labelFirstProve),
		Period:             fieldValue(doc, labelPeriod),
		ProductName:        fieldValue(doc, labelProductName),
		Toxicity:           fieldValue(doc, labelToxicity),
		Formulation:        fieldValue(doc, labelFormulation),
		RegistrationHolder: fieldValue(doc, labelHolder),
		Remark:             fieldValue(doc, labelRemark),
		ActiveIngredients:  parseIngredients(doc),
	}
	return rec, nil
}

// fieldValue finds the td whose own text contains label and returns the
// trimmed text of its following sibling td. Only direct text nodes count
// as the label cell's text, so container cells holding nested tables do
// not shadow the real label cell.
func fieldValue(doc *goquery.Document, label string) string {
	var value string
	doc.FindMatcher(labelCells).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(ownText(s), label) {
			return true
		}
		next := s.Next()
		if next.Is("td") {
			value = strings.TrimSpace(next.Text())
			return false
		}
		return true
	})
	return value
}

// ownText concatenates the direct text-node children of a selection.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

// parseIngredients reads the ingredient sub-table. The first two rows are
// headers; rows without exactly two cells are spacers and are skipped.
func parseIngredients(doc *goquery.Document) []models.ActiveIngredient {
	var out []models.ActiveIngredient
	doc.FindMatcher(ingredientRows).Each(func(i int, row *goquery.Selection) {
		if i < 2 {
			return
		}
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		out = append(out, models.ActiveIngredient{
			Ingredient: strings.TrimSpace(cells.Eq(0).Text()),
			Content:    strings.TrimSpace(cells.Eq(1).Text()),
		})
	})
	return out
}
