package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// TokenSource yields the current bearer token, or "" when unauthenticated.
// The session manager owns the token; the client only reads it.
type TokenSource interface {
	Token() string
}

// Client is the typed HTTP client for the Rag-project backend. Authorization
// is attached by a single request middleware, never by individual call sites.
type Client struct {
	http  *resty.Client
	reads *cache.Cache
	log   *zap.Logger
}

// readCacheTTL bounds staleness of the status/search read cache. Both
// endpoints are side-effect free; mutations flush the cache.
const readCacheTTL = 30 * time.Second

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log *zap.Logger) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if t := tokens.Token(); t != "" {
			req.SetAuthToken(t)
		}
		return nil
	})

	return &Client{
		http:  r,
		reads: cache.New(readCacheTTL, time.Minute),
		log:   log,
	}
}

// Login exchanges credentials for a bearer token. The backend expects the
// OAuth2 password form with the email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"username": email, "password": password}).
		SetResult(&out).
		Post("/token")
	if ferr := c.fail(resp, err, "login failed"); ferr != nil {
		return nil, ferr
	}
	return &out, nil
}

// Register creates an account. A duplicate email surfaces as KindValidation.
func (c *Client) Register(ctx context.Context, email, password, fullName string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":     email,
			"password":  password,
			"full_name": fullName,
		}).
		Post("/register")
	return c.fail(resp, err, "registration failed")
}

// CurrentUser fetches the profile for the current token.
func (c *Client) CurrentUser(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me")
	if ferr := c.fail(resp, err, "could not fetch profile"); ferr != nil {
		return nil, ferr
	}
	return &out, nil
}

// Upload sends one file as multipart form data and flushes the read cache,
// since the document set just changed.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	var out UploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("file", path).
		SetResult(&out).
		Post("/upload")
	if ferr := c.fail(resp, err, "upload failed"); ferr != nil {
		return nil, ferr
	}
	c.reads.Flush()
	return &out, nil
}

// ListDocuments returns one page of the caller's documents.
func (c *Client) ListDocuments(ctx context.Context, skip, limit int) (*DocumentList, error) {
	var out DocumentList
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("skip", strconv.Itoa(skip)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/documents")
	if ferr := c.fail(resp, err, "error loading documents"); ferr != nil {
		return nil, ferr
	}
	return &out, nil
}

// DocumentStatus reports ingestion progress for one document. Results are
// cached briefly so status polling does not hammer the backend.
func (c *Client) DocumentStatus(ctx context.Context, documentID int64) (*DocumentStatus, error) {
	key := "status:" + strconv.FormatInt(documentID, 10)
	if v, ok := c.reads.Get(key); ok {
		return v.(*DocumentStatus), nil
	}
	var out DocumentStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/documents/%d/status", documentID))
	if ferr := c.fail(resp, err, "could not fetch document status"); ferr != nil {
		return nil, ferr
	}
	c.reads.SetDefault(key, &out)
	return &out, nil
}

// DeleteDocument removes a document and its chunks, then flushes the read
// cache.
func (c *Client) DeleteDocument(ctx context.Context, documentID int64) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/documents/%d", documentID))
	if ferr := c.fail(resp, err, "error deleting document"); ferr != nil {
		return ferr
	}
	c.reads.Flush()
	return nil
}

// Ask submits a question and returns the answered exchange.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	var out AskResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/ask")
	if ferr := c.fail(resp, err, "error while generating the response"); ferr != nil {
		return nil, ferr
	}
	return &out, nil
}

// SearchSimilar is a read-only similarity search over the caller's chunks.
func (c *Client) SearchSimilar(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	key := "search:" + strconv.Itoa(limit) + ":" + query
	if v, ok := c.reads.Get(key); ok {
		return v.(*SearchResponse), nil
	}
	var out SearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/chat/search")
	if ferr := c.fail(resp, err, "search error"); ferr != nil {
		return nil, ferr
	}
	c.reads.SetDefault(key, &out)
	return &out, nil
}

// Probe checks backend LLM connectivity.
func (c *Client) Probe(ctx context.Context) (*ProbeResponse, error) {
	var out ProbeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chat/test-openai")
	if ferr := c.fail(resp, err, "connectivity check failed"); ferr != nil {
		return nil, ferr
	}
	return &out, nil
}

// fail converts a resty outcome into an *Error, or nil on success. Transport
// failures become KindNetwork; HTTP errors are classified by status and carry
// the backend's detail message when present.
func (c *Client) fail(resp *resty.Response, err error, fallback string) error {
	if err != nil {
		c.log.Warn("request failed", zap.Error(err))
		return &Error{Kind: KindNetwork, Detail: fallback}
	}
	if resp.IsError() {
		var body detailBody
		_ = json.Unmarshal(resp.Body(), &body)
		detail := body.Detail
		if detail == "" {
			detail = fallback
		}
		c.log.Warn("request rejected",
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.String("detail", detail))
		return &Error{Kind: kindForStatus(resp.StatusCode()), Status: resp.StatusCode(), Detail: detail}
	}
	return nil
}
