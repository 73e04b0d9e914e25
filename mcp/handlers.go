package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/logging"
	"github.com/ludo-technologies/docsim/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps        *Dependencies
	categorizer domain.ErrorCategorizer
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "", nil)
	}
	return &HandlerSet{deps: deps, categorizer: service.NewErrorCategorizer()}
}

// HandleFindSimilarDocuments handles the find_similar_documents tool
func (h *HandlerSet) HandleFindSimilarDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	document, ok := args["document"].(string)
	if !ok || document == "" {
		return mcp.NewToolResultError("document parameter is required and must be a string"), nil
	}

	req, errResult := h.buildRequest(args, domain.QueryModeDocument)
	if errResult != nil {
		return errResult, nil
	}
	req.Document = document

	return h.run(ctx, req)
}

// HandleFindDuplicatePairs handles the find_duplicate_pairs tool
func (h *HandlerSet) HandleFindDuplicatePairs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	req, errResult := h.buildRequest(args, domain.QueryModePairs)
	if errResult != nil {
		return errResult, nil
	}

	return h.run(ctx, req)
}

// HandleGetIndexStats handles the get_index_stats tool
func (h *HandlerSet) HandleGetIndexStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	req, errResult := h.buildRequest(args, domain.QueryModeIndex)
	if errResult != nil {
		return errResult, nil
	}

	return h.run(ctx, req)
}

// buildRequest turns tool arguments into a request on top of the resolved
// configuration. A non-nil result is the error to hand back to the client.
func (h *HandlerSet) buildRequest(args map[string]interface{}, mode domain.QueryMode) (*domain.SimilarityRequest, *mcp.CallToolResult) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, mcp.NewToolResultError("path parameter is required and must be a string")
	}

	// Validate path exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path))
	}

	cfg, err := h.deps.ResolveConfig(path)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load configuration: %v", err))
	}

	req := domain.DefaultSimilarityRequest()
	cfg.ApplyToRequest(req)
	req.Paths = []string{path}
	req.Mode = mode
	req.OutputFormat = domain.OutputFormatJSON
	req.NoProgress = true
	req.ConfigPath = h.deps.ConfigPath()

	if v, ok := args["recursive"].(bool); ok {
		req.Recursive = v
	}
	if v, ok := args["skip_empty"].(bool); ok {
		req.SkipEmpty = v
	}
	if v, ok := stringSlice(args["include_patterns"]); ok {
		req.IncludePatterns = v
	}
	if v, ok := stringSlice(args["exclude_patterns"]); ok {
		req.ExcludePatterns = v
	}
	if v, ok := args["threshold"].(float64); ok {
		req.Threshold = v
	}
	if v, ok := wholeNumber(args["max_results"]); ok {
		req.MaxResults = v
	}
	if v, ok := wholeNumber(args["shingle_size"]); ok {
		req.ShingleSize = v
	}
	if v, ok := args["snapshot"].(string); ok {
		req.SnapshotIn = v
	}

	return req, nil
}

func (h *HandlerSet) run(ctx context.Context, req *domain.SimilarityRequest) (*mcp.CallToolResult, error) {
	logger := logging.WithComponent("mcp")

	useCase, err := h.deps.BuildSimilarityUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create use case: %v", err)), nil
	}

	response, err := useCase.Run(ctx, req)
	if err != nil {
		categorized := h.categorizer.Categorize(err)
		logger.Warn("tool call failed", "mode", req.Mode, "category", categorized.Category, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", categorized.Category, err)), nil
	}

	jsonData, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	logger.Debug("tool call completed", "mode", req.Mode, "documents", response.Index.Stats.NumDocuments)
	return mcp.NewToolResultText(string(jsonData)), nil
}

// stringSlice converts a JSON array argument into strings
func stringSlice(raw interface{}) ([]string, bool) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// wholeNumber converts a JSON number argument into an int
func wholeNumber(raw interface{}) (int, bool) {
	v, ok := raw.(float64)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
