// Package tmdb is the client for The Movie Database metadata API.
package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mealmate/internal/httpclient"
	"mealmate/internal/shared"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	posterBaseURL  = "https://image.tmdb.org/t/p/w500"

	// MaxRecommendations is how many similar titles are returned.
	MaxRecommendations = 6
)

// Media types accepted by the API.
const (
	TypeMovie = "movie"
	TypeTV    = "tv"
)

// Media is the detail view of a movie or TV show.
type Media struct {
	ID          int      `json:"id"`
	MediaType   string   `json:"media_type"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Poster      string   `json:"poster,omitempty"`
	Genres      []string `json:"genres"`
	ReleaseDate string   `json:"release_date"`
	Runtime     int      `json:"runtime,omitempty"`
	Rating      float64  `json:"rating"`
	Directors   []string `json:"directors"`
	TopCast     []string `json:"top_cast"`
	Reviews     []string `json:"reviews"`
	IMDbID      string   `json:"imdb_id,omitempty"`
}

// PrimaryGenre returns the first genre or fallback when there is none.
func (m Media) PrimaryGenre(fallback string) string {
	if len(m.Genres) == 0 {
		return fallback
	}
	return m.Genres[0]
}

// SearchResult is one movie or TV hit of a free-text search.
type SearchResult struct {
	ID        int    `json:"id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Year      string `json:"year,omitempty"`
	Label     string `json:"label"`
}

// Recommendation is a similar title.
type Recommendation struct {
	ID        int    `json:"id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Poster    string `json:"poster,omitempty"`
}

// Client talks to the TMDB v3 API.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host.
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

// NewClient creates a TMDB client.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{apiKey: apiKey, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New("tmdb", timeout, httpclient.WithRateLimit(20, 10))
	}
	return c
}

// ValidateMediaType rejects anything other than "movie" or "tv".
func ValidateMediaType(mediaType string) error {
	if mediaType != TypeMovie && mediaType != TypeTV {
		return shared.NewValidationError("media type must be %q or %q, got %q", TypeMovie, TypeTV, mediaType)
	}
	return nil
}

type apiTitle struct {
	ID           int    `json:"id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

func (t apiTitle) displayTitle() string {
	switch {
	case t.Title != "":
		return t.Title
	case t.Name != "":
		return t.Name
	default:
		return "Unknown"
	}
}

// Search finds movies and TV shows matching query. People and other result
// types are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.NewValidationError("search query must not be empty")
	}

	params := url.Values{}
	params.Set("query", query)

	var resp struct {
		Results []apiTitle `json:"results"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint("/search/multi", params), &resp); err != nil {
		return nil, fmt.Errorf("failed to search media: %w", err)
	}

	var results []SearchResult
	for _, item := range resp.Results {
		if item.MediaType != TypeMovie && item.MediaType != TypeTV {
			continue
		}
		date := item.ReleaseDate
		if date == "" {
			date = item.FirstAirDate
		}
		res := SearchResult{ID: item.ID, MediaType: item.MediaType, Title: item.displayTitle()}
		res.Label = res.Title
		if len(date) >= 4 {
			res.Year = date[:4]
			res.Label = fmt.Sprintf("%s (%s)", res.Title, res.Year)
		}
		results = append(results, res)
	}
	return results, nil
}

// Details fetches a title with credits, reviews and external ids.
func (c *Client) Details(ctx context.Context, mediaType string, id int) (*Media, error) {
	if err := ValidateMediaType(mediaType); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,reviews,external_ids")

	var resp struct {
		apiTitle
		Overview       string  `json:"overview"`
		VoteAverage    float64 `json:"vote_average"`
		Runtime        int     `json:"runtime"`
		EpisodeRunTime []int   `json:"episode_run_time"`
		Genres         []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Credits struct {
			Cast []struct {
				Name      string `json:"name"`
				Character string `json:"character"`
			} `json:"cast"`
			Crew []struct {
				Name string `json:"name"`
				Job  string `json:"job"`
			} `json:"crew"`
		} `json:"credits"`
		Reviews struct {
			Results []struct {
				Content string `json:"content"`
			} `json:"results"`
		} `json:"reviews"`
		ExternalIDs struct {
			IMDbID string `json:"imdb_id"`
		} `json:"external_ids"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint(fmt.Sprintf("/%s/%d", mediaType, id), params), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d: %w", mediaType, id, err)
	}

	m := &Media{
		ID:          resp.ID,
		MediaType:   mediaType,
		Title:       resp.displayTitle(),
		Overview:    resp.Overview,
		Poster:      posterURL(resp.PosterPath),
		ReleaseDate: resp.ReleaseDate,
		Runtime:     resp.Runtime,
		Rating:      resp.VoteAverage,
		IMDbID:      resp.ExternalIDs.IMDbID,
	}
	if m.ID == 0 {
		m.ID = id
	}
	if m.Overview == "" {
		m.Overview = "No overview available"
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = resp.FirstAirDate
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = "Unknown"
	}
	if m.Runtime == 0 && len(resp.EpisodeRunTime) > 0 {
		m.Runtime = resp.EpisodeRunTime[0]
	}
	for _, g := range resp.Genres {
		m.Genres = append(m.Genres, g.Name)
	}
	for i, actor := range resp.Credits.Cast {
		if i == 5 {
			break
		}
		m.TopCast = append(m.TopCast, fmt.Sprintf("%s as %s", actor.Name, actor.Character))
	}
	for _, person := range resp.Credits.Crew {
		if person.Job == "Director" {
			m.Directors = append(m.Directors, person.Name)
		}
	}
	for i, review := range resp.Reviews.Results {
		if i == 3 {
			break
		}
		m.Reviews = append(m.Reviews, excerpt(review.Content, 200))
	}
	if len(m.Directors) == 0 {
		m.Directors = []string{"Not available"}
	}
	if len(m.TopCast) == 0 {
		m.TopCast = []string{"Cast information not available"}
	}
	return m, nil
}

// Recommendations returns up to MaxRecommendations similar titles.
func (c *Client) Recommendations(ctx context.Context, mediaType string, id int) ([]Recommendation, error) {
	if err := ValidateMediaType(mediaType); err != nil {
		return nil, err
	}

	var resp struct {
		Results []apiTitle `json:"results"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint(fmt.Sprintf("/%s/%d/recommendations", mediaType, id), nil), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}

	var recs []Recommendation
	for _, item := range resp.Results {
		if len(recs) == MaxRecommendations {
			break
		}
		mt := item.MediaType
		if mt == "" {
			mt = mediaType
		}
		recs = append(recs, Recommendation{
			ID:        item.ID,
			MediaType: mt,
			Title:     item.displayTitle(),
			Poster:    posterURL(item.PosterPath),
		})
	}
	return recs, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	return c.baseURL + path + "?" + params.Encode()
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
