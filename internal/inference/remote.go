package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/llm-router-go/internal/models"
)

// RemoteEmbedder calls an OpenAI-compatible embedding API.
type RemoteEmbedder struct {
	baseURL   string
	apiKey    string
	modelName string
	client    *http.Client
}

// NewRemoteEmbedder creates a RemoteEmbedder. A nil client gets a default
// with a 10 second timeout.
func NewRemoteEmbedder(baseURL, apiKey, modelName string, client *http.Client) *RemoteEmbedder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteEmbedder{
		baseURL:   baseURL,
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
	}
}

type embeddingAPIRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingAPIResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Encode returns one embedding vector per input text.
func (e *RemoteEmbedder) Encode(texts []string) ([][]float64, error) {
	bodyBytes, err := json.Marshal(embeddingAPIRequest{Model: e.modelName, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	// Try /v1/embeddings first, fall back to /embeddings.
	urls := []string{
		fmt.Sprintf("%s/v1/embeddings", e.baseURL),
		fmt.Sprintf("%s/embeddings", e.baseURL),
	}

	var lastErr error
	for _, url := range urls {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var apiResp embeddingAPIResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			lastErr = fmt.Errorf("decode embedding response: %w", err)
			continue
		}

		if len(apiResp.Data) != len(texts) {
			lastErr = fmt.Errorf("embedding API returned %d vectors for %d inputs", len(apiResp.Data), len(texts))
			continue
		}

		out := make([][]float64, len(apiResp.Data))
		for i, d := range apiResp.Data {
			out[i] = d.Embedding
		}
		return out, nil
	}

	return nil, fmt.Errorf("all embedding API endpoints failed: %w", lastErr)
}

// RemoteClassifier calls a HuggingFace-style zero-shot classification API.
type RemoteClassifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRemoteClassifier creates a RemoteClassifier. A nil client gets a
// default with a 15 second timeout.
func NewRemoteClassifier(endpoint, apiKey string, client *http.Client) *RemoteClassifier {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteClassifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
	}
}

type zeroShotAPIRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
		MultiLabel      bool     `json:"multi_label"`
	} `json:"parameters"`
}

type zeroShotAPIResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Predict scores the text against the candidate labels.
// The API returns labels ordered by descending score; the result is
// re-ordered to match the candidate list.
func (rc *RemoteClassifier) Predict(text string, candidateLabels []string) ([]models.LabelScore, error) {
	reqBody := zeroShotAPIRequest{Inputs: text}
	reqBody.Parameters.CandidateLabels = candidateLabels
	reqBody.Parameters.MultiLabel = true

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal zero-shot request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, rc.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+rc.apiKey)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zero-shot API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp zeroShotAPIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode zero-shot response: %w", err)
	}
	if len(apiResp.Labels) != len(apiResp.Scores) {
		return nil, fmt.Errorf("zero-shot API returned %d labels with %d scores", len(apiResp.Labels), len(apiResp.Scores))
	}

	byLabel := make(map[string]float64, len(apiResp.Labels))
	for i, label := range apiResp.Labels {
		byLabel[label] = apiResp.Scores[i]
	}

	out := make([]models.LabelScore, 0, len(candidateLabels))
	for _, label := range candidateLabels {
		score, ok := byLabel[label]
		if !ok {
			return nil, fmt.Errorf("zero-shot API response missing label %q", label)
		}
		out = append(out, models.LabelScore{Label: label, Score: score})
	}
	return out, nil
}
