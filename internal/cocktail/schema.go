package cocktail

// SchemaName identifies the structured output contract sent to the model.
const SchemaName = "cocktails"

const notCocktailHint = " If it's not a cocktail, but another beverage or a menu category, leave empty."

// ExtractionSchema is the JSON schema for one extracted menu entry.
var ExtractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "The name of the cocktail." + notCocktailHint,
		},
		"ingredients": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "List of ingredients in the cocktail." + notCocktailHint,
		},
		"price": map[string]any{
			"type":        []string{"number", "null"},
			"description": "Price of the cocktail, null if the menu does not state one.",
		},
		"ingredient_notes": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
			"description": "Describe the aroma and flavor notes each ingredient contributes to the cocktail, " +
				"taking into account its relative contribution. A minor addition should be described as subtle; " +
				"a dominant ingredient should have its prominent impact on taste and aroma detailed." + notCocktailHint,
		},
		"tasting_notes": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
			"description": "A comprehensive description of the tasting experience: flavor profile, aroma, mouthfeel " +
				"and aftertaste, how the ingredients combine, and any distinguishing characteristics." + notCocktailHint,
		},
		"category": map[string]any{
			"type":        "string",
			"enum":        DisplayNames(),
			"description": "Glassware category. Use 'No Cocktail' for other beverages or menu categories, 'Unknown' when unsure.",
		},
	},
	"required": []string{
		"name",
		"ingredients",
		"price",
		"ingredient_notes",
		"tasting_notes",
		"category",
	},
	"additionalProperties": false,
}

// ResponseFormat wraps ExtractionSchema in the json_schema response format envelope.
func ResponseFormat() map[string]any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   SchemaName,
			"strict": true,
			"schema": ExtractionSchema,
		},
	}
}
