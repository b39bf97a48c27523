package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/just-nibble/stargazer-service/internal/adapters/api"
	"github.com/just-nibble/stargazer-service/internal/normalize"
)

// ExtractionError is a failed call to the extraction provider: unreachable
// endpoint, non-200 reply, or a payload that fails schema validation
type ExtractionError struct {
	Reason string
	Raw    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

// Extraction is the structured result of one extraction call
type Extraction struct {
	Country     string               `json:"country"`
	Employers   []normalize.Employer `json:"employers"`
	LinkedinURL string               `json:"linkedin_url"`
	WebsiteURL  string               `json:"website_url"`
	University  string               `json:"university"`
	Email       string               `json:"email"`
}

// HTTPClient interface for HTTP operations (allows mocking in tests)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Extractor turns a public profile into structured fields through an
// OpenAI-compatible chat-completions endpoint. It never retries; callers
// decide retry or skip policy.
type Extractor struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient HTTPClient
}

func NewExtractor(apiKey, baseURL, modelName string) *Extractor {
	return &Extractor{
		apiKey:     apiKey,
		baseURL:    baseURL,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract runs a single structured-output call for the given profile and
// optional candidate emails
func (x *Extractor) Extract(ctx context.Context, user *api.User, candidateEmails []string) (*Extraction, error) {
	payload := map[string]interface{}{
		"model": x.modelName,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(user, candidateEmails)},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, &ExtractionError{Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/chat/completions", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, &ExtractionError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.apiKey)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("provider unreachable: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("provider returned status %d", resp.StatusCode),
			Raw:    string(body),
		}
	}

	var reply struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &reply); err != nil || len(reply.Choices) == 0 {
		return nil, &ExtractionError{Reason: "malformed completion reply", Raw: string(body)}
	}

	content := reply.Choices[0].Message.Content

	var extraction Extraction
	if err := json.Unmarshal([]byte(content), &extraction); err != nil {
		return nil, &ExtractionError{Reason: "schema validation failed", Raw: content}
	}
	for _, e := range extraction.Employers {
		if e.Name == "" {
			return nil, &ExtractionError{Reason: "schema validation failed: employer without name", Raw: content}
		}
	}

	return &extraction, nil
}

func buildPrompt(user *api.User, candidateEmails []string) string {
	var b strings.Builder

	b.WriteString("Extract structured facts about a GitHub user from their public profile.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", user.Name)
	fmt.Fprintf(&b, "Username: %s\n", user.Login)
	fmt.Fprintf(&b, "Bio: %s\n", user.Bio)
	fmt.Fprintf(&b, "Location: %s\n", user.Location)
	fmt.Fprintf(&b, "Company: %s\n", user.Company)
	fmt.Fprintf(&b, "Website: %s\n", user.Blog)
	fmt.Fprintf(&b, "Twitter: %s\n", user.TwitterUsername)
	fmt.Fprintf(&b, "Email: %s\n", user.Email)

	b.WriteString("\nRules:\n")
	b.WriteString("- country: use the explicit location field when present; only fall back to cultural or linguistic hints when there is no location.\n")
	b.WriteString("- employers: company names from the company and bio text. Mark at most one as current, and only when it is obviously the current employer.\n")
	b.WriteString("- linkedin_url, website_url, university: only when stated or clearly linked in the profile.\n")

	if len(candidateEmails) > 0 {
		fmt.Fprintf(&b, "- email: pick the address from this commit-history list that best matches the user's name or username, or null if none match: %s\n",
			strings.Join(candidateEmails, ", "))
	} else {
		b.WriteString("- email: repeat the profile email field, or null if it is empty.\n")
	}

	b.WriteString("\nRespond with a JSON object: {\"country\": string|null, \"employers\": [{\"name\": string, \"current\": boolean}], \"linkedin_url\": string|null, \"website_url\": string|null, \"university\": string|null, \"email\": string|null}. Use null for anything unknown.")

	return b.String()
}
