package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a recipe search.
// OwnerID is mandatory: every query is conjoined with an exact owner term,
// so one user's recipes can never surface in another user's results.
type Params struct {
	OwnerID    string // Required, scopes the whole query
	Query      string // User's search text
	CookbookID string // Optional, restrict to one cookbook

	// Pagination
	Limit  int
	Offset int

	// Sorting: "relevance", "title", "recent"
	SortBy    string
	SortOrder string // "asc", "desc"

	Highlight bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams(ownerID string) Params {
	return Params{
		OwnerID:   ownerID,
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	Title       string            `json:"title"`
	CookbookID  string            `json:"cookbook_id"`
	Ingredients string            `json:"ingredients,omitempty"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// Search executes an owner-scoped search query.
func (s *RecipeIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.OwnerID == "" {
		return nil, fmt.Errorf("search requires an owner id")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("ingredients")
	}

	// Request stored fields
	searchRequest.Fields = []string{"title", "cookbook_id", "ingredients"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if cb, ok := hit.Fields["cookbook_id"].(string); ok {
			searchHit.CookbookID = cb
		}
		if ing, ok := hit.Fields["ingredients"].(string); ok {
			searchHit.Ingredients = ing
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	queries := make([]query.Query, 0, 3)

	// Owner scope - non-negotiable exact term
	ownerQuery := bleve.NewTermQuery(params.OwnerID)
	ownerQuery.SetField("owner_id")
	queries = append(queries, ownerQuery)

	// Optional cookbook filter
	if params.CookbookID != "" {
		cbQuery := bleve.NewTermQuery(params.CookbookID)
		cbQuery.SetField("cookbook_id")
		queries = append(queries, cbQuery)
	}

	// Main text query across title, description and ingredients
	if params.Query != "" {
		textQueries := []query.Query{}

		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		ingredientMatch := bleve.NewMatchQuery(params.Query)
		ingredientMatch.SetField("ingredients")
		ingredientMatch.SetBoost(1.5)
		textQueries = append(textQueries, ingredientMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		// Fuzzy matching for typo tolerance on title
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}
