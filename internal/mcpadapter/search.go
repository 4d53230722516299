package mcpadapter

import (
	"context"

	"github.com/lningthou/asimov-backend/internal/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the MCP tool input schema (matches the HTTP query parameters).
type SearchInput struct {
	Query string `json:"q" jsonschema:"natural-language description of the video to find"`
	K     *int   `json:"k,omitempty" jsonschema:"number of results (1-100, default: 5)"`
	Mode  string `json:"mode,omitempty" jsonschema:"semantic (default), keyword or hybrid"`
}

type SearchOutput struct {
	Results []search.Result `json:"results"`
	Count   int             `json:"count"`
}

// Searcher is satisfied by *search.Service.
type Searcher interface {
	Search(ctx context.Context, req search.SearchRequest) ([]search.Result, error)
}

// NewSearchHandler returns a tool handler that uses the given searcher.
// Pass the returned function to mcp.AddTool.
func NewSearchHandler(searcher Searcher) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		return SearchVideos(ctx, searcher, req, input)
	}
}

// SearchVideos runs one search and returns the ranked videos.
func SearchVideos(
	ctx context.Context,
	searcher Searcher,
	req *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	mode, err := search.ParseMode(input.Mode)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	searchReq := search.SearchRequest{
		Query: input.Query,
		Mode:  mode,
	}
	if input.K != nil {
		searchReq.K = *input.K
	} else {
		searchReq.SetDefaults()
	}

	results, err := searcher.Search(ctx, searchReq)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []search.Result{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// NewServer builds the MCP server exposing the search_videos tool.
func NewServer(searcher Searcher, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "egodex-search",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_videos",
		Description: "Search EgoDex manipulation videos by text. Returns task, description, score and the mp4/hdf5 URIs of each match.",
	}, NewSearchHandler(searcher))

	return server
}
