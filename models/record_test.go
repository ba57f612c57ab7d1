package models

import "testing"

func TestFlatIngredients(t *testing.T) {
	tests := []struct {
		name        string
		ingredients []ActiveIngredient
		want        string
	}{
		{
			name: "single",
			ingredients: []ActiveIngredient{
				{Ingredient: "glyphosate", Content: "30%"},
			},
			want: "glyphosate (30%)",
		},
		{
			name: "multiple",
			ingredients: []ActiveIngredient{
				{Ingredient: "glyphosate", Content: "30%"},
				{Ingredient: "dicamba", Content: "10%"},
			},
			want: "glyphosate (30%), dicamba (10%)",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RegistrationRecord{ActiveIngredients: tt.ingredients}
			if got := r.FlatIngredients(); got != tt.want {
				t.Errorf("FlatIngredients() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunResultAppendKeepsTotalInLockstep(t *testing.T) {
	var r RunResult

	r.Append([]RegistrationRecord{{ProductName: "a"}, {ProductName: "b"}})
	if r.TotalItems != 2 || len(r.Records) != 2 {
		t.Fatalf("after first append: total=%d len=%d", r.TotalItems, len(r.Records))
	}

	r.Append(nil)
	if r.TotalItems != 2 {
		t.Errorf("empty append changed total to %d", r.TotalItems)
	}

	r.Append([]RegistrationRecord{{ProductName: "c"}})
	if r.TotalItems != 3 || len(r.Records) != 3 {
		t.Errorf("after third append: total=%d len=%d", r.TotalItems, len(r.Records))
	}
	if r.Records[2].ProductName != "c" {
		t.Errorf("append order broken: %+v", r.Records)
	}
}
