package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/encomment/internal/postprocess"
)

// OllamaRefiner asks a local Ollama model to tighten a draft comment.
type OllamaRefiner struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaRefiner creates a refiner backed by a local Ollama model.
func NewOllamaRefiner(model, baseURL string) *OllamaRefiner {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaRefiner{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Refine returns the model's rewrite of draftText. An empty answer keeps the
// draft.
func (r *OllamaRefiner) Refine(ctx context.Context, sourceLang, targetLang, sourceText, draftText string) (string, error) {
	prompt := buildRefinementPrompt(sourceLang, targetLang, sourceText, draftText)

	reqBody := ollamaRequest{
		Model:  r.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal refinement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create refinement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refinement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refiner returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode refinement response: %w", err)
	}

	refined := postprocess.Clean(ollamaResp.Response)
	if refined == "" {
		return draftText, nil
	}
	return refined, nil
}

func buildRefinementPrompt(sourceLang, targetLang, sourceText, draftText string) string {
	return fmt.Sprintf(`You review %[2]s translations of source code comments.

ORIGINAL COMMENT (%[1]s):
%[3]s

DRAFT (%[2]s):
%[4]s

Rewrite the draft as a single comment line a careful programmer would write:
- keep every fact from the original and add nothing
- prefer the imperative mood for instructions ("Close the file", not "Closes the file" or "It closes the file")
- keep identifiers, numbers, URLs and code exactly as written
- drop filler words and politeness

If the draft is already good, return it unchanged.

Output ONLY the comment text in %[2]s, without a comment marker.`,
		sourceLang, targetLang, sourceText, draftText)
}
