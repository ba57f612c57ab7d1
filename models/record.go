package models

import (
	"fmt"
	"strings"
)

// ActiveIngredient is one row of the overlay's ingredient sub-table.
type ActiveIngredient struct {
	Ingredient string `json:"ingredient"`
	Content    string `json:"content"`
}

// RegistrationRecord is one scraped pesticide-registration entry.
// Every field may be empty: the overlay layout varies between entries and
// a missing label yields an empty value rather than a failed record.
type RegistrationRecord struct {
	RegisteredNumber   string             `json:"registered_number"`
	FirstProve         string             `json:"first_prove"`
	Period             string             `json:"period"`
	ProductName        string             `json:"product_name"`
	Toxicity           string             `json:"toxicity"`
	Formulation        string             `json:"formulation"`
	RegistrationHolder string             `json:"registration_certificate_holder"`
	Remark             string             `json:"remark"`
	ActiveIngredients  []ActiveIngredient `json:"active_ingredients"`
}

// FlatIngredients renders the ingredient list in the display form
// "ingredient (content)" joined by ", ".
func (r *RegistrationRecord) FlatIngredients() string {
	parts := make([]string, 0, len(r.ActiveIngredients))
	for _, ai := range r.ActiveIngredients {
		parts = append(parts, fmt.Sprintf("%s (%s)", ai.Ingredient, ai.Content))
	}
	return strings.Join(parts, ", ")
}

// RunResult is the accumulated outcome of one full search run.
// TotalItems always equals len(Records); Append keeps them in lockstep.
type RunResult struct {
	Records    []RegistrationRecord `json:"records"`
	TotalItems int                  `json:"total_items"`
	Pages      int                  `json:"pages"`
}

// Append adds a page's records and advances the counters.
func (r *RunResult) Append(records []RegistrationRecord) {
	r.Records = append(r.Records, records...)
	r.TotalItems = len(r.Records)
}
