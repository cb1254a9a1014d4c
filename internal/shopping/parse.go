package shopping

import (
	"strconv"
	"strings"

	"mealmate/internal/recipe"
)

// ParseLine reads a free-text ingredient line of the form
// "amount unit name", e.g. "2 cups flour". The amount must be a plain
// decimal number; lines such as "a pinch of salt" or "1/2 cup milk" are
// reported as unparsed. A line with only an amount and a unit uses the unit
// as the name.
func ParseLine(line string) (recipe.Ingredient, bool) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 || !isDecimal(parts[0]) {
		return recipe.Ingredient{}, false
	}

	amount, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return recipe.Ingredient{}, false
	}

	unit := parts[1]
	name := unit
	if len(parts) > 2 {
		name = parts[2]
	}
	return recipe.Ingredient{Name: strings.TrimSpace(name), Amount: amount, Unit: unit}, true
}

// ParseLines splits lines into parsed ingredients and the raw lines that
// could not be parsed, preserving order and dropping duplicate raw lines.
func ParseLines(lines []string) ([]recipe.Ingredient, []string) {
	var parsed []recipe.Ingredient
	var unparsed []string
	seen := make(map[string]bool)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if ing, ok := ParseLine(line); ok {
			parsed = append(parsed, ing)
			continue
		}
		if !seen[line] {
			seen[line] = true
			unparsed = append(unparsed, line)
		}
	}
	return parsed, unparsed
}

// isDecimal accepts digits with at most one decimal point.
func isDecimal(s string) bool {
	if s == "" || s == "." {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		case r < '0' || r > '9':
			return false
		}
	}
	return true
}
