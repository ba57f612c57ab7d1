// Command livesearch runs one search against a running pestreg instance
// and prints the records as a table. Manual smoke test for the full
// submit/paginate/extract cycle against the live site.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL  = flag.String("api-url", "http://localhost:8080", "Pestreg API base URL")
	apiKey  = flag.String("api-key", "", "API key for authenticated requests")
	term    = flag.String("term", "glyphosate", "Active ingredient to search for")
	timeout = flag.Int("timeout", 600, "Run timeout in seconds")
	output  = flag.String("output", "", "Optional JSON output file path")
)

// --- Request / Response types (mirrors models package) ---

type searchRequest struct {
	ActiveIngredient string `json:"active_ingredient"`
	Timeout          int    `json:"timeout"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Term    string `json:"term"`
	Total   int    `json:"total"`
	Pages   int    `json:"pages"`
	Records []struct {
		RegisteredNumber   string `json:"registered_number"`
		ProductName        string `json:"product_name"`
		Formulation        string `json:"formulation"`
		Toxicity           string `json:"toxicity"`
		RegistrationHolder string `json:"registration_certificate_holder"`
		ActiveIngredients  []struct {
			Ingredient string `json:"ingredient"`
			Content    string `json:"content"`
		} `json:"active_ingredients"`
	} `json:"records"`
	Timing struct {
		TotalMs  int64 `json:"total_ms"`
		SearchMs int64 `json:"search_ms"`
	} `json:"timing"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Pestreg Live Search ===")
	fmt.Printf("API URL:  %s\n", *apiURL)
	fmt.Printf("Term:     %s\n", *term)
	fmt.Printf("Timeout:  %ds\n", *timeout)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure pestreg is running (go run ./cmd/pestreg)\n")
		os.Exit(1)
	}

	reqBody := searchRequest{
		ActiveIngredient: *term,
		Timeout:          *timeout,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/search", bytes.NewReader(bodyBytes))
	if err != nil {
		fmt.Fprintf(os.Stderr, "request error: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: time.Duration(*timeout+60) * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		fmt.Fprintf(os.Stderr, "decode error: %v\n", err)
		os.Exit(1)
	}

	if !sr.Success {
		msg := "unknown error"
		if sr.Error != nil {
			msg = fmt.Sprintf("[%s] %s", sr.Error.Code, sr.Error.Message)
		}
		fmt.Fprintf(os.Stderr, "search failed: %s\n", msg)
		os.Exit(1)
	}

	fmt.Printf("Got %d records across %d pages in %s\n\n", sr.Total, sr.Pages, time.Since(start).Round(time.Second))
	printTable(sr)

	if *output != "" {
		data, err := json.MarshalIndent(sr, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal output: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*output, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nFull results written to %s\n", *output)
	}
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func printTable(sr searchResponse) {
	fmt.Println(strings.Repeat("─", 100))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Number\tProduct\tFormulation\tToxicity\tHolder\tIngredients\n")
	fmt.Fprintf(w, "──────\t───────\t───────────\t────────\t──────\t───────────\n")

	for _, r := range sr.Records {
		parts := make([]string, 0, len(r.ActiveIngredients))
		for _, ai := range r.ActiveIngredients {
			parts = append(parts, fmt.Sprintf("%s (%s)", ai.Ingredient, ai.Content))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RegisteredNumber,
			truncate(r.ProductName, 30),
			r.Formulation,
			r.Toxicity,
			truncate(r.RegistrationHolder, 35),
			truncate(strings.Join(parts, ", "), 40),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 100))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
