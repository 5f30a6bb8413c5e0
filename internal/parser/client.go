package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/localnerve/recipedb/internal/types"
)

// ParsedIngredient is one ingredient from the AI parse
type ParsedIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// ParsedRecipe is the structured draft the AI parsing service returns
type ParsedRecipe struct {
	Title              string             `json:"title"`
	Source             string             `json:"source"`
	Category           string             `json:"category"`
	Description        string             `json:"description"`
	Instructions       string             `json:"instructions"`
	Ingredients        []ParsedIngredient `json:"ingredients"`
	Tags               []string           `json:"tags"`
	Servings           *uint64            `json:"servings"`
	EstimatedCalories  *int               `json:"estimatedCalories"`
	CaloriesConfidence string             `json:"caloriesConfidence"`
}

// Client talks to the external AI parsing and text-extraction
// services. Both are called before any database transaction begins.
type Client struct {
	parserURL    string
	extractorURL string
	client       *http.Client
}

// NewClient creates a client for the configured service base URLs
func NewClient(parserURL, extractorURL string) *Client {
	return &Client{
		parserURL:    strings.TrimSuffix(parserURL, "/"),
		extractorURL: strings.TrimSuffix(extractorURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ParseRecipe submits raw text and returns the structured draft plus
// the raw response body for the parsed_data audit blob. A parse that
// finds no recipe surfaces as ValidationError.
func (c *Client) ParseRecipe(text string) (*ParsedRecipe, []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &types.ValidationError{Field: "text", Msg: "no text to parse"}
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	resp, err := c.client.Post(c.parserURL+"/parse", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("parser service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parser response: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusNotFound {
		return nil, nil, &types.ValidationError{Field: "text", Msg: parseErrorMessage(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("parser service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ParsedRecipe
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to decode parser response: %w. Body: %s", err, string(body))
	}

	if strings.TrimSpace(parsed.Title) == "" {
		return nil, nil, &types.ValidationError{Field: "text", Msg: "no recipe found"}
	}

	return &parsed, body, nil
}

// ExtractFile returns cleaned plain text for a file path
func (c *Client) ExtractFile(filePath string) (string, error) {
	return c.extract(map[string]string{"file_path": filePath})
}

// ExtractURL returns cleaned plain text for a web page
func (c *Client) ExtractURL(url string) (string, error) {
	return c.extract(map[string]string{"url": url})
}

func (c *Client) extract(request map[string]string) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal extract request: %w", err)
	}

	resp, err := c.client.Post(c.extractorURL+"/extract", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("extractor service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read extractor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extractor service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode extractor response: %w. Body: %s", err, string(body))
	}

	return result.Text, nil
}

// parseErrorMessage pulls a message out of an error body, falling back
// to the canonical "no recipe found".
func parseErrorMessage(body []byte) string {
	var result struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err == nil {
		if result.Message != "" {
			return result.Message
		}
		if result.Error != "" {
			return result.Error
		}
	}
	return "no recipe found"
}
