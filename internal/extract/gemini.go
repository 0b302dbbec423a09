package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// recipeSchema describes the JSON object the model must return.
// Shared between the URL and image prompts.
const recipeSchema = `Return a JSON object with these exact fields:
- title: string
- description: string (optional)
- ingredients: array of objects with "item" (string) and "amount" (string, optional)
- instructions: array of strings (each step as a separate string)
- prepTime: string (optional, e.g., "15 mins")
- cookTime: string (optional, e.g., "30 mins")
- servings: string (optional, e.g., "4-6")`

// Client calls the Gemini generateContent API to extract recipes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewClient creates a Gemini extraction client.
// An empty apiKey is allowed; calls will fail with ErrNotConfigured.
func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		logger:  logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FromURL fetches a webpage, converts it to markdown and asks the model to
// extract the recipe. When the model doesn't report an image, the page's
// og:image is used instead.
func (c *Client) FromURL(ctx context.Context, pageURL string) (*Recipe, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	page, err := fetchPage(ctx, c.httpClient, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	c.logger.Debug("extracting recipe from page",
		"url", pageURL,
		"content_chars", len(page.Markdown),
		"og_image", page.OGImage != "",
	)

	prompt := fmt.Sprintf(`Extract recipe information from the following webpage content. %s
- imageUrl: string (optional, extract if available)

Webpage content:
%s`, recipeSchema, page.Markdown)

	text, err := c.generateContent(ctx, []geminiPart{{Text: prompt}})
	if err != nil {
		return nil, err
	}

	recipe, err := parseRecipeJSON(text)
	if err != nil {
		return nil, err
	}

	if recipe.ImageURL == "" {
		recipe.ImageURL = page.OGImage
	}

	return recipe, nil
}

// FromImage asks the model to extract a recipe from a photo.
// mimeType defaults to image/jpeg when empty.
func (c *Client) FromImage(ctx context.Context, imageData []byte, mimeType string) (*Recipe, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	c.logger.Debug("extracting recipe from image",
		"bytes", len(imageData),
		"mime_type", mimeType,
	)

	prompt := fmt.Sprintf("Extract recipe information from this image. %s", recipeSchema)

	parts := []geminiPart{
		{Text: prompt},
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(imageData),
		}},
	}

	text, err := c.generateContent(ctx, parts)
	if err != nil {
		return nil, err
	}

	return parseRecipeJSON(text)
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"response_mime_type"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generateContent sends one generateContent request and returns the first
// candidate's text. response_mime_type forces JSON output from the model.
func (c *Client) generateContent(ctx context.Context, parts []geminiPart) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generateContent request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("gemini request failed",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return "", fmt.Errorf("generateContent failed: status %d", resp.StatusCode)
	}

	var genResp geminiResponse
	if err := json.UnmarshalRead(resp.Body, &genResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResult
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// parseRecipeJSON decodes the model's JSON output into a Recipe.
// Strips markdown code fences the model sometimes wraps around JSON.
func parseRecipeJSON(text string) (*Recipe, error) {
	raw := bytes.TrimSpace([]byte(text))
	raw = bytes.TrimPrefix(raw, []byte("```json"))
	raw = bytes.TrimPrefix(raw, []byte("```"))
	raw = bytes.TrimSuffix(raw, []byte("```"))
	raw = bytes.TrimSpace(raw)

	var recipe Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		return nil, fmt.Errorf("parse recipe JSON: %w", err)
	}

	if recipe.Title == "" {
		return nil, ErrEmptyResult
	}

	return &recipe, nil
}
