// Package cms reads site content (products, courses, blog posts, site
// settings) from the Sanity HTTP query API. It never writes.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"iaction/internal/config"
	"iaction/internal/domain/model"
)

var ErrNotConfigured = errors.New("cms: project id not configured")

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg config.SanityConfig) *Client {
	c := &Client{
		token: cfg.Token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.ProjectID != "" {
		//トークンがあるときはCDNを使わない（非公開フィールドを読むため）
		host := "apicdn.sanity.io"
		if cfg.Token != "" {
			host = "api.sanity.io"
		}
		c.baseURL = fmt.Sprintf("https://%s.%s/v%s/data/query/%s", cfg.ProjectID, host, cfg.APIVersion, cfg.Dataset)
	}
	return c
}

// テスト用にベースURLとHTTPクライアントを差し替える
func NewClientWithBaseURL(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: token, http: hc}
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// resultがnullならfound=false
func (c *Client) Query(ctx context.Context, query string, params map[string]string, out any) (bool, error) {
	if c.baseURL == "" {
		return false, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", query)
	for k, v := range params {
		//GROQのパラメータはJSON値で渡す
		b, err := json.Marshal(v)
		if err != nil {
			return false, err
		}
		q.Set("$"+k, string(b))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("cms: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return false, fmt.Errorf("cms: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("cms: status %d", resp.StatusCode)
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return false, fmt.Errorf("cms: decode: %w", err)
	}
	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return false, fmt.Errorf("cms: decode result: %w", err)
	}
	return true, nil
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if _, err := c.Query(ctx, productsQuery, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProductBySlug(ctx context.Context, slug string) (model.Product, bool, error) {
	var out model.Product
	found, err := c.Query(ctx, productBySlugQuery, map[string]string{"slug": slug}, &out)
	return out, found, err
}

func (c *Client) Courses(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	if _, err := c.Query(ctx, coursesQuery, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Posts(ctx context.Context) ([]model.BlogPost, error) {
	var out []model.BlogPost
	if _, err := c.Query(ctx, blogPostsQuery, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PostBySlug(ctx context.Context, slug string) (model.BlogPost, bool, error) {
	var out model.BlogPost
	found, err := c.Query(ctx, blogPostBySlugQuery, map[string]string{"slug": slug}, &out)
	return out, found, err
}

func (c *Client) SiteSettings(ctx context.Context) (model.SiteSettings, bool, error) {
	var out model.SiteSettings
	found, err := c.Query(ctx, siteSettingsQuery, nil, &out)
	return out, found, err
}

// メール送信時だけ使う
func (c *Client) ProductSecret(ctx context.Context, productID string) (model.ProductSecret, bool, error) {
	var out model.ProductSecret
	found, err := c.Query(ctx, productSecretQuery, map[string]string{"productId": productID}, &out)
	return out, found, err
}

func (c *Client) CourseSecret(ctx context.Context, courseID string) (model.CourseSecret, bool, error) {
	var out model.CourseSecret
	found, err := c.Query(ctx, courseSecretQuery, map[string]string{"courseId": courseID}, &out)
	return out, found, err
}
