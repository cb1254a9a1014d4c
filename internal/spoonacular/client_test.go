package spoonacular

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mealmate/internal/httpclient"
	"mealmate/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	hc := httpclient.New("spoonacular", time.Second, httpclient.WithRetryDelay(time.Millisecond))
	return NewClient("test-key", time.Second, WithBaseURL(server.URL), WithHTTPClient(hc))
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/complexSearch", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apiKey"))
		assert.Equal(t, "Chicken,Rice", q.Get("includeIngredients"))
		assert.Equal(t, "Nuts", q.Get("excludeIngredients"))
		assert.Equal(t, "Italian,Mexican", q.Get("cuisine"))
		assert.Equal(t, "150", q.Get("number"))
		assert.Equal(t, "true", q.Get("addRecipeInformation"))

		w.Write([]byte(`{"results":[{
			"id": 716429,
			"title": "Pasta with Garlic",
			"image": "https://img.spoonacular.com/716429.jpg",
			"sourceUrl": "https://example.com/pasta",
			"servings": 2,
			"readyInMinutes": 45,
			"pricePerServing": 163.15,
			"extendedIngredients": [{"name": "garlic", "amount": 2, "unit": "cloves", "original": "2 cloves garlic"}],
			"nutrition": {"nutrients": [{"name": "Calories", "amount": 543.36, "unit": "kcal"}]}
		}]}`))
	})

	c := newTestClient(t, mux)
	recipes, err := c.Search(context.Background(), recipe.Query{
		IncludeIngredients: []string{"Chicken", "Rice"},
		ExcludeIngredients: []string{"Nuts"},
		Cuisines:           []string{"Italian", "Mexican"},
		Number:             150,
	})
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, 716429, r.ID)
	assert.Equal(t, 2, r.Servings)
	assert.Equal(t, []recipe.Ingredient{{Name: "garlic", Amount: 2, Unit: "cloves"}}, r.Ingredients)
	kcal, ok := r.Calories()
	assert.True(t, ok)
	assert.Equal(t, 543.36, kcal)
	require.NotNil(t, r.PricePerServing)
	assert.Equal(t, 163.15, *r.PricePerServing)
}

func TestSearchOmitsAnyCuisine(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/complexSearch", func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["cuisine"]
		assert.False(t, present)
		w.Write([]byte(`{"results":[]}`))
	})

	c := newTestClient(t, mux)
	recipes, err := c.Search(context.Background(), recipe.Query{Cuisines: []string{"Any", "Italian"}})
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestInformation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/42/information", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 42, "title": "Shakshuka", "servings": 4,
			"instructions": "<ol><li>Heat the oil.</li><li>Add   eggs and <b>simmer</b>.</li></ol>",
			"extendedIngredients": [
				{"name": "eggs", "amount": 6, "unit": "", "original": "6 eggs"},
				{"name": "salt", "amount": 1, "unit": "pinch", "original": "a pinch of salt"}
			]
		}`))
	})
	mux.HandleFunc("/recipes/7/information", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := newTestClient(t, mux)

	d, err := c.Information(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Heat the oil.\nAdd eggs and simmer.", d.Instructions)
	assert.Equal(t, []string{"6 eggs", "a pinch of salt"}, d.IngredientLines)

	servings, err := c.Servings(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 4, servings)

	_, err = c.Information(context.Background(), 7)
	assert.True(t, httpclient.IsNotFound(err))
}

func TestIngredients(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/42/ingredientWidget.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ingredients":[
			{"name":"flour","amount":{"metric":{"value":250,"unit":"g"},"us":{"value":2,"unit":"cups"}}}
		]}`))
	})

	c := newTestClient(t, mux)
	ings, err := c.Ingredients(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []recipe.Ingredient{{Name: "flour", Amount: 250, Unit: "g"}}, ings)
}

func TestPrice(t *testing.T) {
	t.Run("UsesTopLevelCost", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/mealplanner/shopping-list/compute", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var body struct {
				Items []string `json:"items"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"250 g flour", "2 eggs"}, body.Items)

			w.Write([]byte(`{"cost": 315.5, "aisles":[{"aisle":"Baking","items":[
				{"name":"flour","cost":15.5,"measures":{"metric":{"amount":250,"unit":"g"}}}
			]}]}`))
		})

		c := newTestClient(t, mux)
		pricing, err := c.Price(context.Background(), []string{"250 g flour", "2 eggs"})
		require.NoError(t, err)
		assert.InDelta(t, 3.155, pricing.TotalCost, 1e-9)
		require.Len(t, pricing.Aisles, 1)
		assert.Equal(t, "Baking", pricing.Aisles[0].Name)
		assert.InDelta(t, 0.155, pricing.Aisles[0].Items[0].Cost, 1e-9)
	})

	t.Run("FallsBackToItemCosts", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/mealplanner/shopping-list/compute", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"aisles":[{"aisle":"Produce","items":[{"name":"kale","cost":120},{"name":"leek","cost":80}]}]}`))
		})

		c := newTestClient(t, mux)
		pricing, err := c.Price(context.Background(), []string{"1 kale"})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, pricing.TotalCost, 1e-9)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/mealplanner/shopping-list/compute", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"message":"quota"}`))
		})

		c := newTestClient(t, mux)
		_, err := c.Price(context.Background(), []string{"1 kale"})
		assert.Error(t, err)
	})
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", HTMLToText("  "))
	assert.Equal(t, "Mix well.\nBake.", HTMLToText("<p>Mix well.</p><p>Bake.</p>"))
	assert.Equal(t, "Just stir it.", HTMLToText("Just   stir it."))
}
