package planner

import (
	"encoding/json"
	"time"

	"mealmate/internal/recipe"
)

// Slot is a meal type within a day.
type Slot string

const (
	Breakfast Slot = "Breakfast"
	Lunch     Slot = "Lunch"
	Snack     Slot = "Snack"
	Dinner    Slot = "Dinner"
)

// Days and Slots fix the iteration order of a WeekPlan.
var (
	Days  = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	Slots = [4]Slot{Breakfast, Lunch, Snack, Dinner}
)

// DayPlan holds the four meals of one day. A nil entry means no recipe could
// be placed.
type DayPlan struct {
	Day   string
	Meals [4]*recipe.Recipe
}

// Meal returns the recipe placed in slot, if any.
func (d DayPlan) Meal(slot Slot) *recipe.Recipe {
	for i, s := range Slots {
		if s == slot {
			return d.Meals[i]
		}
	}
	return nil
}

// WeekPlan is a full week of 28 slots.
type WeekPlan struct {
	WeekStart time.Time
	Days      [7]DayPlan
}

// PlacedMeal is one filled slot, used for flat iteration and serialization.
type PlacedMeal struct {
	Day    string         `json:"day"`
	Slot   Slot           `json:"slot"`
	Recipe *recipe.Recipe `json:"recipe"`
}

// NewWeekPlan returns an empty plan with the day names set.
func NewWeekPlan(weekStart time.Time) WeekPlan {
	var p WeekPlan
	p.WeekStart = weekStart
	for i, day := range Days {
		p.Days[i].Day = day
	}
	return p
}

// Meals lists every slot in day then slot order, including empty ones.
func (p WeekPlan) Meals() []PlacedMeal {
	meals := make([]PlacedMeal, 0, len(Days)*len(Slots))
	for _, d := range p.Days {
		for j, slot := range Slots {
			meals = append(meals, PlacedMeal{Day: d.Day, Slot: slot, Recipe: d.Meals[j]})
		}
	}
	return meals
}

// Recipes returns the placed recipes in slot order, one entry per filled slot.
func (p WeekPlan) Recipes() []recipe.Recipe {
	var out []recipe.Recipe
	for _, m := range p.Meals() {
		if m.Recipe != nil {
			out = append(out, *m.Recipe)
		}
	}
	return out
}

// Usage counts placements per recipe id.
func (p WeekPlan) Usage() map[int]int {
	counts := make(map[int]int)
	for _, r := range p.Recipes() {
		counts[r.ID]++
	}
	return counts
}

// GetNextMonday returns midnight of the first Monday strictly after t.
func GetNextMonday(t time.Time) time.Time {
	daysUntil := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	next := t.AddDate(0, 0, daysUntil)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

type weekPlanJSON struct {
	WeekStart time.Time     `json:"week_start"`
	Days      []dayPlanJSON `json:"days"`
}

type dayPlanJSON struct {
	Day   string                  `json:"day"`
	Meals map[Slot]*recipe.Recipe `json:"meals"`
}

// MarshalJSON encodes the plan as days with meals keyed by slot name.
func (p WeekPlan) MarshalJSON() ([]byte, error) {
	out := weekPlanJSON{WeekStart: p.WeekStart, Days: make([]dayPlanJSON, 0, len(p.Days))}
	for _, d := range p.Days {
		meals := make(map[Slot]*recipe.Recipe, len(Slots))
		for j, slot := range Slots {
			meals[slot] = d.Meals[j]
		}
		out.Days = append(out.Days, dayPlanJSON{Day: d.Day, Meals: meals})
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a plan written by MarshalJSON. Unknown days are ignored.
func (p *WeekPlan) UnmarshalJSON(data []byte) error {
	var in weekPlanJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = NewWeekPlan(in.WeekStart)
	for _, d := range in.Days {
		for i, day := range Days {
			if day != d.Day {
				continue
			}
			for j, slot := range Slots {
				p.Days[i].Meals[j] = d.Meals[slot]
			}
		}
	}
	return nil
}
