package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"namegame/internal/models"
)

// DefaultPageSize is the page size requested from the upstream API
const DefaultPageSize = 50

// profile is one entry of GET /api/v1/profiles
type profile struct {
	ID           json.Number `json:"id"`
	Name         string      `json:"name"`
	FirstName    string      `json:"first_name"`
	ImagePath    string      `json:"image_path"`
	Pronouns     string      `json:"pronouns"`
	ResultsCount *int        `json:"results_count,omitempty"`
}

func (p profile) person() models.Person {
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name = p.FirstName
	}
	return models.Person{
		ID:        p.ID.String(),
		Name:      strings.TrimSpace(name),
		ImagePath: p.ImagePath,
		Pronouns:  p.Pronouns,
	}
}

// Client fetches the current batch of people from the Recurse Center API
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a directory client. baseURL is the site root, e.g. https://www.recurse.com
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the HTTP client used for requests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithPageSize overrides the page size
func (c *Client) WithPageSize(n int) *Client {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

// Fetch pages through the directory until an empty page, a short page, or the
// advertised results_count is reached
func (c *Client) Fetch(ctx context.Context) ([]models.Person, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	var people []models.Person
	total := -1
	for offset := 0; total < 0 || offset < total; offset += c.pageSize {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		if total < 0 && page[0].ResultsCount != nil {
			total = *page[0].ResultsCount
		}
		for _, p := range page {
			people = append(people, p.person())
		}
		if len(page) < c.pageSize {
			break
		}
	}

	log.Printf("Fetched %d profiles from directory", len(people))
	return people, nil
}

func (c *Client) fetchPage(ctx context.Context, offset int) ([]profile, error) {
	query := url.Values{}
	query.Set("scope", "current")
	query.Set("limit", strconv.Itoa(c.pageSize))
	query.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/profiles?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory page at offset %d: %w", offset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var page []profile
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode directory page at offset %d: %w", offset, err)
	}
	return page, nil
}
