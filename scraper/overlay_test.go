package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const overlayFixture = `<html><body>
<table>
<tr><td>Registered number：</td><td> PD20082385 </td></tr>
<tr><td>FirstProve：</td><td>2008-11-25</td></tr>
<tr><td>Period：</td><td>2028-11-25</td></tr>
<tr><td>ProductName：</td><td>Glyphosate</td></tr>
<tr><td>Toxicity：</td><td>Low</td></tr>
<tr><td>Formulation：</td><td>AS</td></tr>
<tr><td>Registration certificate holder：</td><td>Example Agrochemical Co., Ltd.</td></tr>
<tr><td>Remark：</td><td></td></tr>
</table>
<table>
<tr><td colspan="2">Active ingredient</td></tr>
<tr><td>Ingredient</td><td>Content</td></tr>
<tr><td>glyphosate</td><td>30%</td></tr>
<tr><td>glyphosate-isopropylammonium</td><td>41%</td></tr>
</table>
</body></html>`

func TestParseOverlay(t *testing.T) {
	rec, err := parseOverlay(overlayFixture)
	if err != nil {
		t.Fatalf("parseOverlay: %v", err)
	}

	if rec.RegisteredNumber != "PD20082385" {
		t.Errorf("RegisteredNumber = %q, want %q", rec.RegisteredNumber, "PD20082385")
	}
	if rec.FirstProve != "2008-11-25" {
		t.Errorf("FirstProve = %q, want %q", rec.FirstProve, "2008-11-25")
	}
	if rec.Period != "2028-11-25" {
		t.Errorf("Period = %q, want %q", rec.Period, "2028-11-25")
	}
	if rec.ProductName != "Glyphosate" {
		t.Errorf("ProductName = %q, want %q", rec.ProductName, "Glyphosate")
	}
	if rec.Toxicity != "Low" {
		t.Errorf("Toxicity = %q, want %q", rec.Toxicity, "Low")
	}
	if rec.Formulation != "AS" {
		t.Errorf("Formulation = %q, want %q", rec.Formulation, "AS")
	}
	if rec.RegistrationHolder != "Example Agrochemical Co., Ltd." {
		t.Errorf("RegistrationHolder = %q", rec.RegistrationHolder)
	}
	if rec.Remark != "" {
		t.Errorf("Remark = %q, want empty", rec.Remark)
	}

	if len(rec.ActiveIngredients) != 2 {
		t.Fatalf("len(ActiveIngredients) = %d, want 2", len(rec.ActiveIngredients))
	}
	if rec.ActiveIngredients[0].Ingredient != "glyphosate" || rec.ActiveIngredients[0].Content != "30%" {
		t.Errorf("first ingredient = %+v", rec.ActiveIngredients[0])
	}
	if rec.ActiveIngredients[1].Ingredient != "glyphosate-isopropylammonium" || rec.ActiveIngredients[1].Content != "41%" {
		t.Errorf("second ingredient = %+v", rec.ActiveIngredients[1])
	}
}

func TestParseOverlayMissingLabels(t *testing.T) {
	// Sparse layout: only two labels present. The rest must come back
	// empty without an error.
	const sparse = `<html><body><table>
	<tr><td>ProductName：</td><td>Test Product</td></tr>
	<tr><td>Toxicity：</td><td>Moderate</td></tr>
	</table></body></html>`

	rec, err := parseOverlay(sparse)
	if err != nil {
		t.Fatalf("parseOverlay: %v", err)
	}
	if rec.ProductName != "Test Product" {
		t.Errorf("ProductName = %q", rec.ProductName)
	}
	if rec.Toxicity != "Moderate" {
		t.Errorf("Toxicity = %q", rec.Toxicity)
	}
	if rec.RegisteredNumber != "" || rec.FirstProve != "" || rec.Remark != "" {
		t.Errorf("absent labels must yield empty fields: %+v", rec)
	}
	if len(rec.ActiveIngredients) != 0 {
		t.Errorf("no ingredient table, got %d rows", len(rec.ActiveIngredients))
	}
}

func TestParseIngredientsHeaderOnly(t *testing.T) {
	// An ingredient table with nothing but its two header rows.
	const headerOnly = `<html><body>
	<table><tr><td>ProductName：</td><td>X</td></tr></table>
	<table>
	<tr><td colspan="2">Active ingredient</td></tr>
	<tr><td>Ingredient</td><td>Content</td></tr>
	</table></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(headerOnly))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if got := parseIngredients(doc); len(got) != 0 {
		t.Errorf("parseIngredients = %v, want empty", got)
	}
}

func TestParseIngredientsSkipsMalformedRows(t *testing.T) {
	// Rows without exactly two cells are spacers and must be dropped.
	const mixed = `<html><body>
	<table><tr><td>ProductName：</td><td>X</td></tr></table>
	<table>
	<tr><td colspan="2">Active ingredient</td></tr>
	<tr><td>Ingredient</td><td>Content</td></tr>
	<tr><td>abamectin</td><td>5%</td></tr>
	<tr><td colspan="2">notes spanning both columns</td></tr>
	<tr><td>a</td><td>b</td><td>c</td></tr>
	<tr><td>imidacloprid</td><td>10%</td></tr>
	</table></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(mixed))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	got := parseIngredients(doc)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (got %v)", len(got), got)
	}
	if got[0].Ingredient != "abamectin" || got[1].Ingredient != "imidacloprid" {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestFieldValueIgnoresNestedLabelEcho(t *testing.T) {
	// A container td wrapping the whole layout must not shadow the real
	// label cell: only direct text nodes count.
	const nested = `<html><body><table><tr><td>
	<table><tr><td>Toxicity：</td><td>Low</td></tr></table>
	</td><td>WRONG</td></tr></table></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(nested))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if got := fieldValue(doc, "Toxicity："); got != "Low" {
		t.Errorf("fieldValue = %q, want %q", got, "Low")
	}
}
