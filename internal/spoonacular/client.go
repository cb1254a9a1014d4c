// Package spoonacular is the client for the Spoonacular recipe API: search,
// recipe detail, ingredient amounts and shopping-list pricing.
package spoonacular

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mealmate/internal/httpclient"
	"mealmate/internal/recipe"
	"mealmate/internal/shopping"
)

const defaultBaseURL = "https://api.spoonacular.com"

// Client talks to the Spoonacular REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the upstream HTTP client.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a Spoonacular client.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New("spoonacular", timeout, httpclient.WithRateLimit(5, 5))
	}
	return c
}

type apiIngredient struct {
	Name     string  `json:"name"`
	Original string  `json:"original"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

type apiRecipe struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	Image               string          `json:"image"`
	SourceURL           string          `json:"sourceUrl"`
	Servings            int             `json:"servings"`
	ReadyInMinutes      int             `json:"readyInMinutes"`
	PricePerServing     *float64        `json:"pricePerServing"`
	Instructions        string          `json:"instructions"`
	ExtendedIngredients []apiIngredient `json:"extendedIngredients"`
	Nutrition           *struct {
		Nutrients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		} `json:"nutrients"`
	} `json:"nutrition"`
}

func (r apiRecipe) toRecipe() recipe.Recipe {
	out := recipe.Recipe{
		ID:              r.ID,
		Title:           r.Title,
		Image:           r.Image,
		SourceURL:       r.SourceURL,
		Servings:        r.Servings,
		ReadyInMinutes:  r.ReadyInMinutes,
		PricePerServing: r.PricePerServing,
	}
	for _, ing := range r.ExtendedIngredients {
		out.Ingredients = append(out.Ingredients, recipe.Ingredient{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit})
	}
	if r.Nutrition != nil && len(r.Nutrition.Nutrients) > 0 {
		out.Nutrients = make(map[string]float64, len(r.Nutrition.Nutrients))
		for _, n := range r.Nutrition.Nutrients {
			out.Nutrients[n.Name] = n.Amount
		}
	}
	return out
}

// Search runs a complexSearch. Recipe information and nutrition are requested
// inline so the results can be planned without further calls.
func (c *Client) Search(ctx context.Context, q recipe.Query) ([]recipe.Recipe, error) {
	params := url.Values{}
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	params.Set("includeNutrition", "true")
	if q.Number > 0 {
		params.Set("number", strconv.Itoa(q.Number))
	}
	if q.Text != "" {
		params.Set("query", q.Text)
	}
	if len(q.IncludeIngredients) > 0 {
		params.Set("includeIngredients", strings.Join(q.IncludeIngredients, ","))
	}
	if len(q.ExcludeIngredients) > 0 {
		params.Set("excludeIngredients", strings.Join(q.ExcludeIngredients, ","))
	}
	if cuisine := cuisineParam(q.Cuisines); cuisine != "" {
		params.Set("cuisine", cuisine)
	}
	if q.MinCalories > 0 {
		params.Set("minCalories", strconv.Itoa(q.MinCalories))
	}
	if q.MaxCalories > 0 {
		params.Set("maxCalories", strconv.Itoa(q.MaxCalories))
	}

	var resp struct {
		Results []apiRecipe `json:"results"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint("/recipes/complexSearch", params), &resp); err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	recipes := make([]recipe.Recipe, 0, len(resp.Results))
	for _, r := range resp.Results {
		recipes = append(recipes, r.toRecipe())
	}
	return recipes, nil
}

// Information fetches the full detail of one recipe.
func (c *Client) Information(ctx context.Context, id int) (*recipe.Detail, error) {
	params := url.Values{}
	params.Set("includeNutrition", "false")

	var r apiRecipe
	if err := c.http.GetJSON(ctx, c.endpoint(fmt.Sprintf("/recipes/%d/information", id), params), &r); err != nil {
		return nil, fmt.Errorf("failed to fetch recipe %d: %w", id, err)
	}

	detail := &recipe.Detail{
		Recipe:       r.toRecipe(),
		Instructions: HTMLToText(r.Instructions),
	}
	if detail.Instructions == "" {
		detail.Instructions = "No instructions available"
	}
	for _, ing := range r.ExtendedIngredients {
		detail.IngredientLines = append(detail.IngredientLines, ing.Original)
	}
	return detail, nil
}

// Servings returns the native serving count of a recipe.
func (c *Client) Servings(ctx context.Context, id int) (int, error) {
	d, err := c.Information(ctx, id)
	if err != nil {
		return 0, err
	}
	return d.Servings, nil
}

// Ingredients returns the metric ingredient amounts of a recipe for all of
// its servings.
func (c *Client) Ingredients(ctx context.Context, id int) ([]recipe.Ingredient, error) {
	var resp struct {
		Ingredients []struct {
			Name   string `json:"name"`
			Amount struct {
				Metric struct {
					Value float64 `json:"value"`
					Unit  string  `json:"unit"`
				} `json:"metric"`
			} `json:"amount"`
		} `json:"ingredients"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint(fmt.Sprintf("/recipes/%d/ingredientWidget.json", id), nil), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch ingredients for recipe %d: %w", id, err)
	}

	out := make([]recipe.Ingredient, 0, len(resp.Ingredients))
	for _, ing := range resp.Ingredients {
		out = append(out, recipe.Ingredient{
			Name:   ing.Name,
			Amount: ing.Amount.Metric.Value,
			Unit:   ing.Amount.Metric.Unit,
		})
	}
	return out, nil
}

// Price computes a shopping list's cost and aisle breakdown. Spoonacular
// reports costs in cents; the returned total is in dollars.
func (c *Client) Price(ctx context.Context, items []string) (shopping.Pricing, error) {
	body, err := json.Marshal(map[string][]string{"items": items})
	if err != nil {
		return shopping.Pricing{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/mealplanner/shopping-list/compute", nil), bytes.NewReader(body))
	if err != nil {
		return shopping.Pricing{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Cost   float64 `json:"cost"`
		Aisles []struct {
			Aisle string `json:"aisle"`
			Items []struct {
				Name     string  `json:"name"`
				Cost     float64 `json:"cost"`
				Measures struct {
					Metric struct {
						Amount float64 `json:"amount"`
						Unit   string  `json:"unit"`
					} `json:"metric"`
				} `json:"measures"`
			} `json:"items"`
		} `json:"aisles"`
	}
	if err := c.http.DoJSON(req, &resp); err != nil {
		return shopping.Pricing{}, fmt.Errorf("failed to compute shopping list: %w", err)
	}

	pricing := shopping.Pricing{Aisles: make([]shopping.Aisle, 0, len(resp.Aisles))}
	itemTotal := 0.0
	for _, a := range resp.Aisles {
		aisle := shopping.Aisle{Name: a.Aisle}
		for _, it := range a.Items {
			aisle.Items = append(aisle.Items, shopping.AisleItem{
				Name:   it.Name,
				Amount: it.Measures.Metric.Amount,
				Unit:   it.Measures.Metric.Unit,
				Cost:   it.Cost / 100,
			})
			itemTotal += it.Cost
		}
		pricing.Aisles = append(pricing.Aisles, aisle)
	}

	total := resp.Cost
	if total == 0 {
		total = itemTotal
	}
	pricing.TotalCost = total / 100
	return pricing, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)
	return c.baseURL + path + "?" + params.Encode()
}

// cuisineParam joins cuisines unless the selection is empty or includes "Any".
func cuisineParam(cuisines []string) string {
	var kept []string
	for _, c := range cuisines {
		c = strings.TrimSpace(c)
		if strings.EqualFold(c, "any") {
			return ""
		}
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, ",")
}
