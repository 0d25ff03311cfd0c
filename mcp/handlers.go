package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/analyzer"
	"github.com/ludo-technologies/setsim/service"
)

// Default result limits for tool responses
const (
	DefaultMaxResults = 100
	DefaultMaxRows    = 50
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	return &HandlerSet{deps: deps}
}

// HandleSimilarPairs handles the similar_pairs tool
func (h *HandlerSet) HandleSimilarPairs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, req, explicit, errResult := h.parseDatasetArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	if v, ok := args["threshold"].(float64); ok {
		req.Threshold = v
		explicit[service.FlagThreshold] = true
	}
	if v, ok := args["exact"].(bool); ok {
		req.Exact = v
		explicit[service.FlagExact] = true
	}

	useCase, err := h.deps.BuildSimilarityUseCase(explicit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create use case: %v", err)), nil
	}

	result, err := useCase.ExecuteAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("similarity computation failed: %v", err)), nil
	}

	outputMode := "summary"
	if om, ok := args["output_mode"].(string); ok {
		outputMode = om
	}

	maxResults := DefaultMaxResults
	if mr, ok := args["max_results"].(float64); ok {
		maxResults = int(mr)
	}

	switch outputMode {
	case "lines":
		var sb strings.Builder
		for i, p := range result.Pairs {
			if maxResults > 0 && i >= maxResults {
				break
			}
			sb.WriteString(p.String())
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	case "full":
		return jsonResult(result)
	default: // "summary"
		return jsonResult(formatPairsSummary(result, maxResults))
	}
}

// HandleSignatureMatrix handles the signature_matrix tool
func (h *HandlerSet) HandleSignatureMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, req, explicit, errResult := h.parseDatasetArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	req, err := h.deps.ResolveRequest(req, explicit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}
	mat, errResult := h.matrix(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	maxRows := DefaultMaxRows
	if mr, ok := args["max_rows"].(float64); ok {
		maxRows = int(mr)
	}

	rows := mat.Rows()
	labels := mat.Labels()
	truncated := false
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
		labels = labels[:maxRows]
		truncated = true
	}

	return jsonResult(map[string]interface{}{
		"labels":       labels,
		"rows":         rows,
		"total_rows":   mat.Len(),
		"total_hashes": mat.TotalHashes(),
		"hash_family":  req.HashFamily,
		"empty_labels": mat.EmptyLabels(),
		"truncated":    truncated,
	})
}

// HandleEstimateSimilarity handles the estimate_similarity tool
func (h *HandlerSet) HandleEstimateSimilarity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, req, explicit, errResult := h.parseDatasetArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	labelA, okA := args["label_a"].(string)
	labelB, okB := args["label_b"].(string)
	if !okA || !okB {
		return mcp.NewToolResultError("label_a and label_b parameters are required and must be strings"), nil
	}

	req, err := h.deps.ResolveRequest(req, explicit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}
	mat, errResult := h.matrix(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	sim, err := mat.SimilarityOf(labelA, labelB)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot estimate similarity: %v", err)), nil
	}

	data := map[string]interface{}{
		"label_a":      labelA,
		"label_b":      labelB,
		"similarity":   sim,
		"distance":     1 - sim,
		"line":         domain.FormatSimilarityLine(1-sim, labelA, labelB),
		"total_hashes": mat.TotalHashes(),
	}
	if exact, ok := args["exact"].(bool); ok && exact {
		if v, err := mat.ExactSimilarity(labelA, labelB); err != nil {
			data["exact_error"] = err.Error()
		} else {
			data["exact_similarity"] = v
		}
	}
	return jsonResult(data)
}

// parseDatasetArgs reads the dataset and signature arguments shared by every tool.
// explicit records which of them the caller supplied.
func (h *HandlerSet) parseDatasetArgs(request mcp.CallToolRequest) (map[string]interface{}, domain.SimilarityRequest, map[string]bool, *mcp.CallToolResult) {
	var req domain.SimilarityRequest

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, req, nil, mcp.NewToolResultError("invalid arguments format")
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, req, nil, mcp.NewToolResultError("path parameter is required and must be a string")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, req, nil, mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path))
	}

	req = *domain.DefaultSimilarityRequest()
	req.DatasetPath = path
	req.ConfigPath = h.deps.ConfigPath()
	explicit := make(map[string]bool)

	if v, ok := args["total_hashes"].(float64); ok {
		req.TotalHashes = int(v)
		explicit[service.FlagTotalHashes] = true
	}
	if v, ok := args["hash_family"].(string); ok {
		req.HashFamily = v
		explicit[service.FlagHashFamily] = true
	}
	if v, ok := args["key_order"].(string); ok {
		req.KeyOrder = domain.KeyOrder(v)
		explicit[service.FlagKeyOrder] = true
	}
	if v, ok := args["empty_set_policy"].(string); ok {
		req.EmptySetPolicy = domain.EmptySetPolicy(v)
		explicit[service.FlagEmptySets] = true
	}
	if v, ok := args["format"].(string); ok {
		req.InputFormat = domain.DatasetFormat(v)
		explicit[service.FlagInputFormat] = true
	}

	return args, req, explicit, nil
}

// matrix loads the dataset of req and returns its (possibly cached) signature matrix
func (h *HandlerSet) matrix(ctx context.Context, req domain.SimilarityRequest) (*analyzer.SignatureMatrix, *mcp.CallToolResult) {
	ds, err := h.deps.ReadDataset(req)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to read dataset: %v", err))
	}
	mat, err := h.deps.Similarity().Matrix(ctx, ds, &req)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to build signatures: %v", err))
	}
	return mat, nil
}

func formatPairsSummary(result *domain.SimilarityResponse, maxResults int) map[string]interface{} {
	pairs := result.Pairs
	truncated := false
	if maxResults > 0 && len(pairs) > maxResults {
		pairs = pairs[:maxResults]
		truncated = true
	}

	summary := map[string]interface{}{
		"pairs":        pairs,
		"statistics":   result.Statistics,
		"total_hashes": result.TotalHashes,
		"hash_family":  result.HashFamily,
		"threshold":    result.Threshold,
		"truncated":    truncated,
	}
	if len(result.EmptyLabels) > 0 {
		summary["empty_labels"] = result.EmptyLabels
	}
	if result.Accuracy != nil {
		summary["accuracy"] = map[string]interface{}{
			"mean_abs_error":   result.Accuracy.MeanAbsError,
			"stddev_abs_error": result.Accuracy.StdDevAbsError,
			"max_abs_error":    result.Accuracy.MaxAbsError,
		}
	}
	return summary
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
