package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mealmate/internal/httpclient"
	"mealmate/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	hc := httpclient.New("tmdb", time.Second, httpclient.WithRetryDelay(time.Millisecond))
	return NewClient("tmdb-key", time.Second, WithBaseURL(server.URL), WithHTTPClient(hc))
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/multi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tmdb-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "the office", r.URL.Query().Get("query"))
		w.Write([]byte(`{"results":[
			{"id":1,"media_type":"tv","name":"The Office","first_air_date":"2005-03-24"},
			{"id":2,"media_type":"person","name":"Steve Carell"},
			{"id":3,"media_type":"movie","title":"Office Space","release_date":""}
		]}`))
	})

	c := newTestClient(t, mux)
	results, err := c.Search(context.Background(), "  the office ")
	require.NoError(t, err)
	assert.Equal(t, []SearchResult{
		{ID: 1, MediaType: "tv", Title: "The Office", Year: "2005", Label: "The Office (2005)"},
		{ID: 3, MediaType: "movie", Title: "Office Space", Label: "Office Space"},
	}, results)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	c := NewClient("k", time.Second, WithBaseURL("http://127.0.0.1:0"))
	_, err := c.Search(context.Background(), "   ")
	assert.True(t, shared.IsValidation(err))
}

func TestDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "credits,reviews,external_ids", r.URL.Query().Get("append_to_response"))
		var cast []string
		for i := 0; i < 7; i++ {
			cast = append(cast, fmt.Sprintf(`{"name":"Actor %d","character":"Role %d"}`, i, i))
		}
		long := strings.Repeat("a", 250)
		fmt.Fprintf(w, `{
			"id": 27205, "title": "Inception", "overview": "Dreams.",
			"poster_path": "/inception.jpg", "release_date": "2010-07-15",
			"runtime": 148, "vote_average": 8.4,
			"genres": [{"name":"Action"},{"name":"Science Fiction"}],
			"credits": {"cast": [%s], "crew": [{"name":"Christopher Nolan","job":"Director"},{"name":"Hans Zimmer","job":"Original Music Composer"}]},
			"reviews": {"results": [{"content":"%s"},{"content":"short"},{"content":"x"},{"content":"y"}]},
			"external_ids": {"imdb_id": "tt1375666"}
		}`, strings.Join(cast, ","), long)
	})
	mux.HandleFunc("/tv/1399", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","episode_run_time":[60]}`))
	})

	c := newTestClient(t, mux)

	m, err := c.Details(context.Background(), TypeMovie, 27205)
	require.NoError(t, err)
	assert.Equal(t, "Inception", m.Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/inception.jpg", m.Poster)
	assert.Equal(t, "Action", m.PrimaryGenre("Drama"))
	assert.Len(t, m.TopCast, 5)
	assert.Equal(t, "Actor 0 as Role 0", m.TopCast[0])
	assert.Equal(t, []string{"Christopher Nolan"}, m.Directors)
	require.Len(t, m.Reviews, 3)
	assert.Equal(t, strings.Repeat("a", 200)+"...", m.Reviews[0])
	assert.Equal(t, "short...", m.Reviews[1])
	assert.Equal(t, "tt1375666", m.IMDbID)

	tv, err := c.Details(context.Background(), TypeTV, 1399)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", tv.Title)
	assert.Equal(t, "2011-04-17", tv.ReleaseDate)
	assert.Equal(t, 60, tv.Runtime)
	assert.Equal(t, "No overview available", tv.Overview)
	assert.Equal(t, []string{"Not available"}, tv.Directors)
	assert.Equal(t, []string{"Cast information not available"}, tv.TopCast)
	assert.Equal(t, "Drama", tv.PrimaryGenre("Drama"))

	_, err = c.Details(context.Background(), "person", 1)
	assert.True(t, shared.IsValidation(err))
}

func TestRecommendations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/1/recommendations", func(w http.ResponseWriter, r *http.Request) {
		items := []string{
			`{"id":1,"title":"Film 1","media_type":"movie","poster_path":"/p1.jpg"}`,
			`{"id":99,"name":"Series","poster_path":""}`,
		}
		for i := 100; i < 107; i++ {
			items = append(items, fmt.Sprintf(`{"id":%d,"title":"Extra"}`, i))
		}
		fmt.Fprintf(w, `{"results":[%s]}`, strings.Join(items, ","))
	})

	c := newTestClient(t, mux)
	recs, err := c.Recommendations(context.Background(), TypeMovie, 1)
	require.NoError(t, err)
	require.Len(t, recs, MaxRecommendations)
	assert.Equal(t, Recommendation{ID: 1, MediaType: "movie", Title: "Film 1", Poster: "https://image.tmdb.org/t/p/w500/p1.jpg"}, recs[0])
	assert.Equal(t, Recommendation{ID: 99, MediaType: "movie", Title: "Series"}, recs[1])
}
