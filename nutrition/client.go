// Package nutrition looks up per-100g nutrient profiles for food items
// through the USDA FoodData Central API.
package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	agentai "github.com/edw-crtn/AgentAI"
)

// targetNutrients maps FoodData Central nutrient numbers to our keys.
var targetNutrients = map[string]string{
	"208": "energy_kcal",
	"203": "protein_g",
	"204": "fat_g",
	"205": "carbohydrate_g",
	"269": "sugars_g",
	"291": "fiber_g",
	"606": "saturated_fat_g",
	"307": "sodium_mg",
}

// dataTypePriority prefers generic foods over branded products.
var dataTypePriority = map[string]int{
	"SR Legacy":      0,
	"Survey (FNDDS)": 1,
	"Foundation":     2,
}

// Nutrient is one extracted nutrient value per 100 g of food.
type Nutrient struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Name  string  `json:"name"`
}

// Result is the lookup outcome. Found=false with an explanatory note is a
// valid answer, not an error.
type Result struct {
	Query            string              `json:"food_name_query"`
	Found            bool                `json:"found"`
	FDCID            int                 `json:"fdc_id,omitempty"`
	Description      string              `json:"description,omitempty"`
	DataType         string              `json:"data_type,omitempty"`
	FoodCategory     string              `json:"food_category,omitempty"`
	NutrientsPer100g map[string]Nutrient `json:"nutrients_per_100g"`
	Notes            string              `json:"notes"`
}

// Client queries FoodData Central. Results are cached per normalized query for
// the process lifetime; the upstream data is static enough that no
// invalidation is needed.
type Client struct {
	apiKey  string
	baseURL string
	http    agentai.HTTPClient
	cache   *Cache
}

// NewClient fails when the API key is missing so that misconfiguration
// surfaces at construction time, not mid-conversation.
func NewClient(cfg agentai.NutritionConfig, httpClient agentai.HTTPClient) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("FOODDATA_API_KEY is not set")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		cache:   NewCache(),
	}, nil
}

// Lookup resolves a food name to its nutrient profile. It never returns a Go
// error: failures become Found=false results with the cause in Notes, so the
// conversation continues.
func (c *Client) Lookup(ctx context.Context, foodName string) Result {
	query := strings.TrimSpace(foodName)
	if query == "" {
		return Result{
			Query:            foodName,
			NutrientsPer100g: map[string]Nutrient{},
			Notes:            "No food name was provided.",
		}
	}

	cacheKey := strings.ToLower(query)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached
	}

	result := c.lookup(ctx, query)
	c.cache.Put(cacheKey, result)
	return result
}

func (c *Client) lookup(ctx context.Context, query string) Result {
	miss := func(notes string) Result {
		return Result{Query: query, NutrientsPer100g: map[string]Nutrient{}, Notes: notes}
	}

	food, err := c.search(ctx, query)
	if err != nil {
		return miss(searchFailureNote(err))
	}
	if food == nil {
		return miss("FoodData Central did not return any food for this query.")
	}
	if food.FDCID == 0 {
		return miss("Search result had no FDC ID; cannot fetch nutrient details.")
	}

	detail, err := c.details(ctx, food.FDCID)
	if err != nil {
		return miss(fmt.Sprintf("Failed to fetch detailed nutrients for FDC ID %d: %v", food.FDCID, err))
	}

	return Result{
		Query:            query,
		Found:            true,
		FDCID:            food.FDCID,
		Description:      food.Description,
		DataType:         food.DataType,
		FoodCategory:     food.FoodCategory,
		NutrientsPer100g: extractNutrients(detail),
		Notes: "Nutrient values are per 100 g of the generic food as provided by " +
			"USDA FoodData Central. Only a small subset of key nutrients is returned.",
	}
}

func searchFailureNote(err error) string {
	var httpErr *statusError
	if errors.As(err, &httpErr) && httpErr.status == http.StatusForbidden {
		return "FoodData Central returned 403 Forbidden. This usually means the API key " +
			"is missing, invalid, or not a genuine FoodData Central key."
	}
	return fmt.Sprintf("Could not retrieve information from FoodData Central "+
		"because of a network or API error: %v", err)
}

// searchFood is one entry returned by the search endpoint.
type searchFood struct {
	FDCID        int     `json:"fdcId"`
	Description  string  `json:"description"`
	DataType     string  `json:"dataType"`
	FoodCategory string  `json:"foodCategory"`
	Score        float64 `json:"score"`
}

func (c *Client) search(ctx context.Context, query string) (*searchFood, error) {
	params := url.Values{
		"query":    {query},
		"pageSize": {"10"},
		"api_key":  {c.apiKey},
	}

	var body struct {
		Foods []searchFood `json:"foods"`
	}
	if err := c.get(ctx, c.baseURL+"/foods/search?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	return chooseBestFood(body.Foods, query), nil
}

func (c *Client) details(ctx context.Context, fdcID int) (*foodDetail, error) {
	params := url.Values{"api_key": {c.apiKey}}

	var detail foodDetail
	if err := c.get(ctx, fmt.Sprintf("%s/food/%d?%s", c.baseURL, fdcID, params.Encode()), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{status: resp.StatusCode, body: string(body)}
	}

	return json.Unmarshal(body, out)
}

// chooseBestFood keeps foods whose description mentions a query token, then
// prefers generic data types and higher search scores.
func chooseBestFood(foods []searchFood, query string) *searchFood {
	if len(foods) == 0 {
		return nil
	}

	tokens := strings.Fields(strings.ToLower(query))
	matches := func(f searchFood) bool {
		if len(tokens) == 0 {
			return true
		}
		description := strings.ToLower(f.Description)
		for _, tok := range tokens {
			if strings.Contains(description, tok) {
				return true
			}
		}
		return false
	}

	candidates := make([]searchFood, 0, len(foods))
	for _, f := range foods {
		if matches(f) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		candidates = foods
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		pa, pb := priorityOf(candidates[a].DataType), priorityOf(candidates[b].DataType)
		if pa != pb {
			return pa < pb
		}
		return candidates[a].Score > candidates[b].Score
	})

	return &candidates[0]
}

func priorityOf(dataType string) int {
	if p, ok := dataTypePriority[dataType]; ok {
		return p
	}
	return 99
}

// foodDetail is the shape of the full-format detail endpoint.
type foodDetail struct {
	FoodNutrients []struct {
		Nutrient struct {
			Number   string `json:"number"`
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
		Amount *float64 `json:"amount"`
	} `json:"foodNutrients"`
}

func extractNutrients(detail *foodDetail) map[string]Nutrient {
	out := map[string]Nutrient{}
	for _, fn := range detail.FoodNutrients {
		key, ok := targetNutrients[fn.Nutrient.Number]
		if !ok || fn.Amount == nil {
			continue
		}
		out[key] = Nutrient{
			Value: *fn.Amount,
			Unit:  fn.Nutrient.UnitName,
			Name:  fn.Nutrient.Name,
		}
	}
	return out
}

// statusError carries a non-200 HTTP status.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.status, e.body)
}
