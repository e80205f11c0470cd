package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
}

type chatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

type modelInfo struct {
	Name string `json:"name"`
}

type tagsResponse struct {
	Models []modelInfo `json:"models"`
}

type Client struct {
	baseURL           string
	model             string
	options           Options
	httpClient        HTTPClient
	minuteRateLimiter *rate.Limiter
	dayRateLimiter    *rate.Limiter
}

func NewClient(baseURL string, model string, options Options) *Client {
	return &Client{
		baseURL:    baseURL,
		model:      model,
		options:    options,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetMinuteRateLimit(maxRequestsPerMinute float32) {
	c.minuteRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerMinute/60), 1)
}

func (c *Client) SetDayRateLimit(maxRequestsPerDay float32) {
	c.dayRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerDay/86400), int(maxRequestsPerDay))
}

// IsAvailable reports whether the ollama server is reachable and serves
// the configured model.
func (c *Client) IsAvailable(ctx context.Context) bool {

	body, err := c.sendRequest(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	var tags tagsResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&tags); err != nil {
		return false
	}

	return lo.ContainsBy(tags.Models, func(m modelInfo) bool {
		return m.Name == c.model || m.Name == c.model+":latest"
	})
}

func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {

	var resp string
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(3, 2*time.Second, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warn("ollama returned server error, retrying...")
		}
		resp, err = c.waitAndChat(ctx, prompt)
		return err, isServerError(err)
	})

	return resp, err
}

func (c *Client) waitAndChat(ctx context.Context, prompt string) (string, error) {

	limiters := []*rate.Limiter{c.minuteRateLimiter, c.dayRateLimiter}
	for _, limiter := range limiters {
		if limiter != nil {
			err := limiter.Wait(ctx)
			if err != nil {
				return "", err
			}
		}
	}

	request := chatRequest{
		Model:    c.model,
		Messages: []Message{{Role: "user", Content: prompt}},
		Stream:   false,
		Options:  c.options,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("error encoding request: %v", err)
	}

	body, err := c.sendRequest(ctx, "POST", c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var chat chatResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&chat); err != nil {
		return "", fmt.Errorf("error decoding JSON response: %v", err)
	}

	return chat.Message.Content, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.Reader) ([]byte, error) {

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	for _, code := range []string{"status 500", "status 502", "status 503"} {
		if strings.Contains(err.Error(), code) {
			return true
		}
	}
	return false
}
