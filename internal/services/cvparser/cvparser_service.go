package cvparser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ParsedCV is the normalized extraction result. Fields the model could
// not find come back empty, never null or free-form.
type ParsedCV struct {
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Bio        string       `json:"bio"`
	Skills     []string     `json:"skills"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type Experience struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

// Service extracts structured profile data from raw CV text through a
// chat-completions endpoint.
type Service struct {
	Client *http.Client
	APIKey string
	APIURL string
}

func NewService(apiKey, apiURL string) *Service {
	return &Service{
		Client: &http.Client{Timeout: 60 * time.Second},
		APIKey: apiKey,
		APIURL: apiURL,
	}
}

const extractionPrompt = `Extract the following fields from this CV as JSON:
{"name": "", "email": "", "phone": "", "bio": "", "skills": [], "education": [{"degree": "", "institution": "", "year": ""}], "experience": [{"title": "", "company": "", "duration": ""}]}
Return only the JSON object, no commentary. Use empty strings or empty arrays for anything missing.

CV text:
`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Parse sends the CV text for extraction and normalizes the result.
func (s *Service) Parse(cvText string) (*ParsedCV, error) {
	reqBody := chatRequest{
		Model: "gpt-4o-mini",
		Messages: []chatMessage{
			{Role: "user", Content: extractionPrompt + cvText},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", s.APIURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cv parser error: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("cv parser error: empty completion")
	}

	parsed, err := decodeExtraction(apiResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	normalize(parsed)
	return parsed, nil
}

// decodeExtraction tolerates models that wrap the JSON in markdown
// fences despite instructions.
func decodeExtraction(content string) (*ParsedCV, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed ParsedCV
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("cv parser error: malformed extraction: %v", err)
	}
	return &parsed, nil
}

func normalize(cv *ParsedCV) {
	cv.Name = strings.TrimSpace(cv.Name)
	cv.Email = strings.ToLower(strings.TrimSpace(cv.Email))
	cv.Phone = strings.TrimSpace(cv.Phone)
	cv.Bio = strings.TrimSpace(cv.Bio)

	seen := make(map[string]bool)
	skills := cv.Skills[:0]
	for _, skill := range cv.Skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}
	cv.Skills = skills

	if cv.Skills == nil {
		cv.Skills = []string{}
	}
	if cv.Education == nil {
		cv.Education = []Education{}
	}
	if cv.Experience == nil {
		cv.Experience = []Experience{}
	}
}
