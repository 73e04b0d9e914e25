package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all docsim MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: find_similar_documents - near-duplicates of one document
	s.AddTool(mcp.NewTool("find_similar_documents",
		append(corpusOptions(),
			mcp.WithDescription("Find the near-duplicates of one document using MinHash LSH candidates verified by exact Jaccard similarity"),
			mcp.WithString("document",
				mcp.Required(),
				mcp.Description("Query document, as a path inside the corpus or its index in the sorted corpus")),
			mcp.WithNumber("threshold",
				mcp.Description("Minimum Jaccard similarity 0.0-1.0 (default: 0.5)")),
			mcp.WithNumber("max_results",
				mcp.Description("Maximum number of matches, 0 = no limit (default: 0)")),
			mcp.WithString("snapshot",
				mcp.Description("Snapshot file to load the index from instead of building it")),
		)...,
	), h.HandleFindSimilarDocuments)

	// Tool 2: find_duplicate_pairs - all near-duplicate pairs
	s.AddTool(mcp.NewTool("find_duplicate_pairs",
		append(corpusOptions(),
			mcp.WithDescription("List every pair of documents whose Jaccard similarity reaches the threshold, most similar first"),
			mcp.WithNumber("threshold",
				mcp.Description("Minimum Jaccard similarity 0.0-1.0 (default: 0.5)")),
			mcp.WithNumber("max_results",
				mcp.Description("Maximum number of pairs, 0 = no limit (default: 0)")),
			mcp.WithString("snapshot",
				mcp.Description("Snapshot file to load the index from instead of building it")),
		)...,
	), h.HandleFindDuplicatePairs)

	// Tool 3: get_index_stats - bucket statistics
	s.AddTool(mcp.NewTool("get_index_stats",
		append(corpusOptions(),
			mcp.WithDescription("Build the LSH index over a corpus and report document, bucket and candidate pair counts"),
		)...,
	), h.HandleGetIndexStats)
}

// corpusOptions are the arguments every tool accepts for selecting the corpus
func corpusOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Corpus directory or file")),
		mcp.WithBoolean("recursive",
			mcp.Description("Recursively walk directories (default: true)")),
		mcp.WithArray("include_patterns",
			mcp.Description("Glob patterns of files to index (default: **/*.txt, **/*.md)")),
		mcp.WithArray("exclude_patterns",
			mcp.Description("Glob patterns of files to leave out")),
		mcp.WithBoolean("skip_empty",
			mcp.Description("Drop documents without shingles instead of failing (default: false)")),
		mcp.WithNumber("shingle_size",
			mcp.Description("Words per shingle (default: 2)")),
	}
}
