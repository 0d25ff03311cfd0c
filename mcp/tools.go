package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ludo-technologies/setsim/domain"
)

// datasetOptions are the tool parameters shared by every setsim tool
func datasetOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the dataset: a JSON/YAML/TOML object of label to integer list, a label,element CSV file, or a directory of integer files")),
		mcp.WithNumber("total_hashes",
			mcp.Description("Number of hash functions, i.e. signature length (default: 200)")),
		mcp.WithString("hash_family",
			mcp.Enum(domain.HashFamilyNames...),
			mcp.Description("Hash family (default: xxhash)")),
		mcp.WithString("key_order",
			mcp.Enum(string(domain.KeyOrderSorted), string(domain.KeyOrderInsertion)),
			mcp.Description("Row order of labels (default: sorted)")),
		mcp.WithString("empty_set_policy",
			mcp.Enum(string(domain.EmptySetExclude), string(domain.EmptySetSentinel)),
			mcp.Description("How empty sets are compared (default: exclude)")),
		mcp.WithString("format",
			mcp.Enum("auto", "json", "yaml", "toml", "csv", "dir"),
			mcp.Description("Dataset format (default: detected from the path)")),
	}
}

func newTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(description)}, datasetOptions()...)
	return mcp.NewTool(name, append(opts, extra...)...)
}

// RegisterTools registers all setsim MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: similar_pairs - thresholded pair enumeration
	s.AddTool(newTool("similar_pairs",
		"Find every pair of labeled sets whose estimated Jaccard distance (1 - similarity) is within a threshold, using MinHash signatures",
		mcp.WithNumber("threshold",
			mcp.Description("Maximum estimated distance 0.0-1.0 (default: 0.2)")),
		mcp.WithBoolean("exact",
			mcp.Description("Also compare the estimates with exact Jaccard similarity (default: false)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "lines", "full"),
			mcp.Description("summary (JSON), lines (\"<distance> ;- <a> ;- <b>\") or full response (default: summary)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of pairs returned, 0 = no limit (default: 100)")),
	), h.HandleSimilarPairs)

	// Tool 2: signature_matrix - raw signatures
	s.AddTool(newTool("signature_matrix",
		"Return the MinHash signature matrix of a dataset, one row per label",
		mcp.WithNumber("max_rows",
			mcp.Description("Maximum number of rows returned, 0 = no limit (default: 50)")),
	), h.HandleSignatureMatrix)

	// Tool 3: estimate_similarity - one pair
	s.AddTool(newTool("estimate_similarity",
		"Estimate the Jaccard similarity of two labeled sets of a dataset",
		mcp.WithString("label_a",
			mcp.Required(),
			mcp.Description("First label")),
		mcp.WithString("label_b",
			mcp.Required(),
			mcp.Description("Second label")),
		mcp.WithBoolean("exact",
			mcp.Description("Also return the exact Jaccard similarity, or exact_error when it is undefined (default: false)")),
	), h.HandleEstimateSimilarity)
}
