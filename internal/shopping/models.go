package shopping

import (
	"math"
	"strings"
)

// Item is one aggregated shopping-list entry. Name is the normalized
// (trimmed, lowercased) ingredient name.
type Item struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// List is an ordered shopping list, one entry per normalized name, in order
// of first occurrence.
type List struct {
	Items []Item `json:"items"`
}

// Get looks up an item by name, normalizing the argument.
func (l List) Get(name string) (Item, bool) {
	key := normalizeName(name)
	for _, it := range l.Items {
		if it.Name == key {
			return it, true
		}
	}
	return Item{}, false
}

// Len returns the number of distinct ingredients.
func (l List) Len() int {
	return len(l.Items)
}

// AisleItem is one priced line of an aisle.
type AisleItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Cost   float64 `json:"cost"`
}

// Aisle groups priced items by store aisle.
type Aisle struct {
	Name  string      `json:"aisle"`
	Items []AisleItem `json:"items"`
}

// Pricing is the answer of a PriceEstimator. TotalCost is in dollars.
type Pricing struct {
	TotalCost float64
	Aisles    []Aisle
}

// Basis is the unscaled aggregation every rescale starts from.
type Basis struct {
	PerServing    List `json:"per_serving"`
	TotalServings int  `json:"total_servings"`
}

// Factor returns desired / max(1, TotalServings).
func (b Basis) Factor(desired int) float64 {
	total := b.TotalServings
	if total < 1 {
		total = 1
	}
	return float64(desired) / float64(total)
}

// Scale applies the scaling factor to the unscaled sums, rounding each
// amount to two decimals.
func (b Basis) Scale(desired int) List {
	factor := b.Factor(desired)
	items := make([]Item, 0, len(b.PerServing.Items))
	for _, it := range b.PerServing.Items {
		items = append(items, Item{Name: it.Name, Amount: round2(it.Amount * factor), Unit: it.Unit})
	}
	return List{Items: items}
}

// Result is a compiled, scaled shopping list with its pricing.
type Result struct {
	Servings  int     `json:"servings"`
	List      List    `json:"list"`
	TotalCost float64 `json:"total_cost"`
	Aisles    []Aisle `json:"aisles"`
	Basis     Basis   `json:"basis"`
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
