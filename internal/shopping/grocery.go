package shopping

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AsNeeded is shown for ingredients whose quantity could not be parsed.
const AsNeeded = "as needed"

// GroceryBasis is the unscaled grocery list for a set of selected recipes:
// summed amounts of the parsed lines over the recipes' combined servings,
// plus the lines whose quantity could not be read.
type GroceryBasis struct {
	Totals        List     `json:"totals"`
	TotalServings int      `json:"total_servings"`
	Unparsed      []string `json:"unparsed"`
}

// NewGroceryBasis parses free-text ingredient lines from recipes that serve
// totalServings people in total.
func NewGroceryBasis(lines []string, totalServings int) GroceryBasis {
	parsed, unparsed := ParseLines(lines)
	if totalServings < 1 {
		totalServings = 1
	}
	return GroceryBasis{
		Totals:        Aggregate(parsed),
		TotalServings: totalServings,
		Unparsed:      unparsed,
	}
}

// Scale returns the grocery list for desired servings, always computed from
// the unscaled totals.
func (g GroceryBasis) Scale(desired int) GroceryList {
	b := Basis{PerServing: g.Totals, TotalServings: g.TotalServings}
	return GroceryList{
		Servings: desired,
		Items:    b.Scale(desired).Items,
		AsNeeded: append([]string(nil), g.Unparsed...),
	}
}

// GroceryList is a scaled grocery list ready to render.
type GroceryList struct {
	Servings int      `json:"servings"`
	Items    []Item   `json:"items"`
	AsNeeded []string `json:"as_needed"`
}

// Text renders the downloadable grocery list.
func (g GroceryList) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grocery List (for %d servings):\n\n", g.Servings)
	for _, it := range g.Items {
		fmt.Fprintf(&sb, "%s: %s\n", it.Name, quantity(it))
	}
	for _, line := range g.AsNeeded {
		fmt.Fprintf(&sb, "%s: %s\n", line, AsNeeded)
	}
	return sb.String()
}

// Text renders the shopping list download, one "Name: amount unit" line per
// ingredient.
func (l List) Text() string {
	var sb strings.Builder
	for _, it := range l.Items {
		fmt.Fprintf(&sb, "%s: %s\n", capitalize(it.Name), quantity(it))
	}
	return sb.String()
}

func quantity(it Item) string {
	return strings.TrimSpace(formatAmount(it.Amount) + " " + it.Unit)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
