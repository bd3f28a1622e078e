package cocktail

// Record is the structured result extracted from one menu entry.
type Record struct {
	Name            string   `json:"name"`
	Ingredients     []string `json:"ingredients"`
	Price           *float64 `json:"price"`
	IngredientNotes []string `json:"ingredient_notes"`
	TastingNotes    []string `json:"tasting_notes"`
	Category        Category `json:"category"`
}

// Entry is the persisted form of a kept Record.
// Field order matches the output file layout.
type Entry struct {
	Name            string   `json:"name"`
	Ingredients     []string `json:"ingredients"`
	Price           *float64 `json:"price"`
	IngredientNotes []string `json:"ingredient_notes"`
	TastingNotes    []string `json:"tasting_notes"`
	Category        Category `json:"category"`
}

// EntryFrom projects a record onto the six persisted fields.
// Slices are copied and never nil so they serialize as [] rather than null.
func EntryFrom(r Record) Entry {
	e := Entry{
		Name:            r.Name,
		Ingredients:     cloneStrings(r.Ingredients),
		IngredientNotes: cloneStrings(r.IngredientNotes),
		TastingNotes:    cloneStrings(r.TastingNotes),
		Category:        r.Category,
	}
	if r.Price != nil {
		p := *r.Price
		e.Price = &p
	}
	return e
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
