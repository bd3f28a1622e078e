package cocktail

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the glassware label assigned to a menu entry.
// The zero value is not a valid category.
type Category string

const (
	NoCocktail Category = "no_cocktail"
	Rocks      Category = "rocks"
	Hurricane  Category = "hurricane"
	Martini    Category = "martini"
	Highball   Category = "highball"
	Coupe      Category = "coupe"
	Collins    Category = "collins"
	Mule       Category = "mule"
	Shot       Category = "shot"
	Flute      Category = "flute"
	Snifter    Category = "snifter"
	Unknown    Category = "unknown"
)

// categories lists every category in declaration order.
var categories = []Category{
	NoCocktail,
	Rocks,
	Hurricane,
	Martini,
	Highball,
	Coupe,
	Collins,
	Mule,
	Shot,
	Flute,
	Snifter,
	Unknown,
}

var displayNames = map[Category]string{
	NoCocktail: "No Cocktail",
	Rocks:      "Rocks",
	Hurricane:  "Hurricane",
	Martini:    "Martini",
	Highball:   "Highball",
	Coupe:      "Coupe",
	Collins:    "Collins",
	Mule:       "Mule",
	Shot:       "Shot",
	Flute:      "Flute",
	Snifter:    "Snifter",
	Unknown:    "Unknown",
}

// aliases maps alternate spellings seen in model output to a category.
var aliases = map[string]Category{
	"sniffer":      Snifter,
	"no-cocktail":  NoCocktail,
	"nococktail":   NoCocktail,
	"not cocktail": NoCocktail,
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// DisplayNames returns the display string of every category, in declaration order.
func DisplayNames() []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, displayNames[c])
	}
	return out
}

// ParseCategory resolves a tag or display string (case-insensitive) to a Category.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", fmt.Errorf("empty category")
	}
	for _, c := range categories {
		if key == string(c) || key == strings.ToLower(displayNames[c]) {
			return c, nil
		}
	}
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// IsCocktail reports whether entries with this category are kept.
func (c Category) IsCocktail() bool {
	return c.Valid() && c != NoCocktail
}

// Display returns the human-readable label persisted in output files.
func (c Category) Display() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) String() string {
	return c.Display()
}

// MarshalJSON writes the display string.
func (c Category) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %q", string(c))
	}
	return json.Marshal(c.Display())
}

// UnmarshalJSON accepts either the display string or the tag.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category must be a string: %w", err)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
