package linkedin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	searchURL  = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	jobViewURL = "https://www.linkedin.com/jobs/view/"
)

// ErrSoftBlock is returned when linkedin throttles guest traffic. The
// caller should back off and keep whatever it already collected.
var ErrSoftBlock = errors.New("linkedin soft block")

var jobURLPattern = regexp.MustCompile(`/jobs/view/[^?]*-(\d+)`)

// Guest endpoints tolerate browser user agents better than a static one,
// so requests rotate through this pool.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

const maxAttempts = 3

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	userAgents  []string
	requests    atomic.Uint64
	retryDelay  time.Duration
}

func NewClient(userAgent string) *Client {
	agents := defaultUserAgents
	if userAgent != "" {
		agents = append([]string{userAgent}, defaultUserAgents...)
	}
	return &Client{httpClient: &http.Client{}, userAgents: agents, retryDelay: 2 * time.Second}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// GetJobCards fetches one page of guest search results.
func (c *Client) GetJobCards(ctx context.Context, parameters SearchParameters) ([]JobCard, error) {

	if err := parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	body, err := c.sendRequest(ctx, searchURL+"?"+parameters.ToUrlParams().Encode())
	if err != nil {
		return nil, err
	}

	return parseJobCards(body)
}

// GetJobDescription fetches the public job view page and extracts the
// description text.
func (c *Client) GetJobDescription(ctx context.Context, externalID string) (string, error) {

	body, err := c.sendRequest(ctx, jobViewURL+externalID)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error parsing job page: %v", err)
	}

	if isLoginWall(doc) {
		return "", ErrSoftBlock
	}

	markup := doc.Find("div.show-more-less-html__markup").First()
	if markup.Length() == 0 {
		markup = doc.Find("div.description__text").First()
	}

	return strings.TrimSpace(markup.Text()), nil
}

func (c *Client) nextUserAgent() string {
	n := c.requests.Add(1) - 1
	return c.userAgents[n%uint64(len(c.userAgents))]
}

// sendRequest retries transient failures with a delay. Soft blocks are
// returned immediately so the caller can stop paging.
func (c *Client) sendRequest(ctx context.Context, url string) ([]byte, error) {

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		body, retryable, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, url string) (body []byte, retryable bool, err error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	// 999 is linkedin's throttling status for guest traffic
	if resp.StatusCode == 999 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, false, ErrSoftBlock
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("request failed with status %v", resp.StatusCode)
	}

	return body, false, nil
}

func parseJobCards(body []byte) ([]JobCard, error) {

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing search results: %v", err)
	}

	if isLoginWall(doc) {
		return nil, ErrSoftBlock
	}

	selection := doc.Find("div.base-card")
	if selection.Length() == 0 {
		selection = doc.Find("li")
	}

	var cards []JobCard
	selection.Each(func(_ int, card *goquery.Selection) {
		parsed, ok := parseCard(card)
		if ok {
			cards = append(cards, parsed)
		}
	})

	return cards, nil
}

func parseCard(card *goquery.Selection) (JobCard, bool) {

	title := strings.TrimSpace(card.Find("h3.base-search-card__title").First().Text())
	company := strings.TrimSpace(card.Find("h4.base-search-card__subtitle a").First().Text())
	if company == "" {
		company = strings.TrimSpace(card.Find("h4.base-search-card__subtitle").First().Text())
	}
	if title == "" || company == "" {
		return JobCard{}, false
	}

	location := strings.TrimSpace(card.Find("span.job-search-card__location").First().Text())

	link, _ := card.Find("a.base-card__full-link").First().Attr("href")
	if link == "" {
		link, _ = card.Find("a").First().Attr("href")
	}

	parsed := JobCard{
		Title:      title,
		Company:    company,
		Location:   location,
		URL:        stripTrackingParams(link),
		ExternalID: extractJobID(link),
	}

	if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
		if posted, err := time.Parse("2006-01-02", datetime); err == nil {
			parsed.PostedDate = &posted
		}
	}

	return parsed, true
}

func extractJobID(jobURL string) string {
	matches := jobURLPattern.FindStringSubmatch(jobURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

func stripTrackingParams(jobURL string) string {
	if idx := strings.Index(jobURL, "?"); idx != -1 {
		return jobURL[:idx]
	}
	return jobURL
}

func isLoginWall(doc *goquery.Document) bool {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.Contains(title, "LinkedIn: Log In") || strings.Contains(title, "Sign Up | LinkedIn")
}
