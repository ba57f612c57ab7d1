package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// searchRequest mirrors the Pestreg API request model.
type searchRequest struct {
	ActiveIngredient string `json:"active_ingredient"`
	Timeout          int    `json:"timeout,omitempty"`
	MaxAge           int    `json:"max_age,omitempty"`
}

// record mirrors one registration entry in the API response.
type record struct {
	RegisteredNumber   string `json:"registered_number"`
	FirstProve         string `json:"first_prove"`
	Period             string `json:"period"`
	ProductName        string `json:"product_name"`
	Toxicity           string `json:"toxicity"`
	Formulation        string `json:"formulation"`
	RegistrationHolder string `json:"registration_certificate_holder"`
	Remark             string `json:"remark"`
	ActiveIngredients  []struct {
		Ingredient string `json:"ingredient"`
		Content    string `json:"content"`
	} `json:"active_ingredients"`
}

// searchResponse mirrors the Pestreg API response model.
type searchResponse struct {
	Success bool     `json:"success"`
	Term    string   `json:"term"`
	Total   int      `json:"total"`
	Pages   int      `json:"pages"`
	Records []record `json:"records"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// jobResponse mirrors the async job creation response.
type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// jobStatusResponse mirrors the async job status response.
type jobStatusResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Term   string          `json:"term"`
	Pages  int             `json:"pages"`
	Total  int             `json:"total"`
	Result *searchResponse `json:"result"`
}

func main() {
	apiURL := os.Getenv("PESTREG_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PESTREG_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PESTREG_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"pestreg",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_registrations",
		mcp.WithDescription("Search the Chinese pesticide registration database (ICAMA) by active ingredient. Walks every result page and returns the full registration records, including the per-product ingredient breakdown."),
		mcp.WithString("active_ingredient",
			mcp.Required(),
			mcp.Description("Active ingredient name to search for, in English (e.g. 'glyphosate')"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Maximum run duration in seconds (default: 600, max: 1800). Large result sets can take several minutes."),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Accept a cached result up to this many milliseconds old (default: 0, always fresh)"),
		),
	)
	s.AddTool(searchTool, handleSearch(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Pestreg API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			// Quick check if still processing.
			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, err := request.RequireString("active_ingredient")
		if err != nil {
			return mcp.NewToolResultError("active_ingredient is required"), nil
		}

		reqBody := searchRequest{ActiveIngredient: term}
		args := request.GetArguments()
		if timeout, ok := args["timeout"].(float64); ok {
			reqBody.Timeout = int(timeout)
		}
		if maxAge, ok := args["max_age"].(float64); ok {
			reqBody.MaxAge = int(maxAge)
		}

		// Create the job asynchronously: a full multi-page run can outlive
		// a single HTTP round trip comfortably, polling does not.
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/search/async", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search request failed: %v", err)), nil
		}

		var job jobResponse
		if err := json.Unmarshal(respBody, &job); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse job response: %v", err)), nil
		}
		if job.ID == "" {
			return mcp.NewToolResultError("search job creation failed"), nil
		}

		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/search/"+job.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling search job failed: %v", err)), nil
		}

		var status jobStatusResponse
		if err := json.Unmarshal(resultBody, &status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse job status: %v", err)), nil
		}

		if status.Status != "completed" || status.Result == nil {
			errMsg := "search failed"
			if status.Result != nil && status.Result.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", status.Result.Error.Code, status.Result.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(renderResult(status.Result)), nil
	}
}

// renderResult formats the search result as a readable table.
func renderResult(resp *searchResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Search %q: %d registrations across %d pages\n\n", resp.Term, resp.Total, resp.Pages))

	for i, r := range resp.Records {
		sb.WriteString(fmt.Sprintf("--- [%d] %s (%s) ---\n", i+1, r.ProductName, r.RegisteredNumber))
		sb.WriteString(fmt.Sprintf("Holder:      %s\n", r.RegistrationHolder))
		sb.WriteString(fmt.Sprintf("Formulation: %s\n", r.Formulation))
		sb.WriteString(fmt.Sprintf("Toxicity:    %s\n", r.Toxicity))
		sb.WriteString(fmt.Sprintf("Valid:       %s to %s\n", r.FirstProve, r.Period))
		if len(r.ActiveIngredients) > 0 {
			parts := make([]string, 0, len(r.ActiveIngredients))
			for _, ai := range r.ActiveIngredients {
				parts = append(parts, fmt.Sprintf("%s (%s)", ai.Ingredient, ai.Content))
			}
			sb.WriteString(fmt.Sprintf("Ingredients: %s\n", strings.Join(parts, ", ")))
		}
		if r.Remark != "" {
			sb.WriteString(fmt.Sprintf("Remark:      %s\n", r.Remark))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
