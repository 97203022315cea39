package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flight-forecast-backend/internal/model"
)

// HTTPSource reads quotes from an external quote service
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource 15s client timeout
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return "http" }

// Search GET {base}/api/flights?origin=&destination=&date=
func (s *HTTPSource) Search(ctx context.Context, origin, destination, date string) ([]model.Quote, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("date", date)
	reqURL := fmt.Sprintf("%s/api/flights?%s", s.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request quote service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote service returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Flights []model.Quote `json:"flights"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	for i := range result.Flights {
		if result.Flights[i].Source == "" {
			result.Flights[i].Source = s.Name()
		}
	}
	return result.Flights, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
