package khalti

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service is a thin client for the Khalti ePayment API. The sandbox host
// is the default; production is opt-in via KHALTI_ENV.
type Service struct {
	Client    *http.Client
	SecretKey string
	BaseURL   string
}

func NewService(secretKey, env string) *Service {
	baseURL := "https://dev.khalti.com/api/v2"
	if env == "production" {
		baseURL = "https://khalti.com/api/v2"
	}

	return &Service{
		Client:    &http.Client{Timeout: 15 * time.Second},
		SecretKey: secretKey,
		BaseURL:   baseURL,
	}
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type InitiateRequest struct {
	ReturnURL         string       `json:"return_url"`
	WebsiteURL        string       `json:"website_url"`
	Amount            int64        `json:"amount"` // paisa
	PurchaseOrderID   string       `json:"purchase_order_id"`
	PurchaseOrderName string       `json:"purchase_order_name"`
	CustomerInfo      CustomerInfo `json:"customer_info"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

type LookupResponse struct {
	Pidx        string `json:"pidx"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
	Refunded    bool   `json:"refunded"`
}

// Initiate creates a hosted checkout session and returns the pidx plus
// the URL the client is redirected to.
func (s *Service) Initiate(req InitiateRequest) (*InitiateResponse, error) {
	var resp InitiateResponse
	if err := s.post("/epayment/initiate/", req, &resp); err != nil {
		return nil, err
	}
	if resp.Pidx == "" {
		return nil, fmt.Errorf("khalti error: initiate returned no pidx")
	}
	return &resp, nil
}

// Lookup fetches the settlement status for a pidx. Verification trusts
// this call, never the redirect query parameters.
func (s *Service) Lookup(pidx string) (*LookupResponse, error) {
	var resp LookupResponse
	if err := s.post("/epayment/lookup/", map[string]string{"pidx": pidx}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) post(path string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "key "+s.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("khalti error: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	return nil
}
