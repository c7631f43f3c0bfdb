// Package client talks to the crewboard REST API on behalf of the registries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/config"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// VersionUnavailable is reported when the server version cannot be fetched.
const VersionUnavailable = "N/A"

// Options configures a Client.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	Tokens          TokenStore
	HTTPClient      *http.Client
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Logger          *logger.Logger
}

// Client is a JSON client for the jobs, team, login and version endpoints.
// Every request runs under its own timeout; expiry surfaces as a
// RequestError with Timeout set.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	tokens  TokenStore
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

// New creates a client from explicit options.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Tokens == nil {
		opts.Tokens = &MemoryTokenStore{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(base.String(), "/"),
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		tokens:  opts.Tokens,
		logger:  opts.Logger.WithComponent("api_client"),
	}

	failures := opts.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "crewboard-api",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var re *entities.RequestError
			if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warnw("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return c, nil
}

// NewFromConfig creates a client with a file-backed token store.
func NewFromConfig(cfg config.ClientConfig, l *logger.Logger) (*Client, error) {
	return New(Options{
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Timeout,
		Tokens:          NewFileTokenStore(cfg.TokenFile),
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
		Logger:          l,
	})
}

// Authenticated reports whether a session token is stored.
func (c *Client) Authenticated() bool {
	token, err := c.tokens.Load()
	return err == nil && token != ""
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp ports.LoginResponse
	req := ports.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp, false); err != nil {
		return err
	}
	if resp.Token == "" {
		return &entities.RequestError{Op: "POST /login", Err: errors.New("empty token in response")}
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Version returns the server version, or VersionUnavailable when the call
// fails.
func (c *Client) Version(ctx context.Context) string {
	var resp ports.VersionResponse
	if err := c.do(ctx, http.MethodGet, "/version", nil, &resp, false); err != nil {
		c.logger.Warnw("Version lookup failed", "error", err)
		return VersionUnavailable
	}
	return resp.Version
}

// ListJobs fetches every job.
func (c *Client) ListJobs(ctx context.Context) ([]entities.Job, error) {
	var jobs []entities.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &jobs, true); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CreateJob posts a new job and returns the stored record.
func (c *Client) CreateJob(ctx context.Context, req ports.CreateJobRequest) (entities.Job, error) {
	var job entities.Job
	err := c.do(ctx, http.MethodPost, "/jobs", req, &job, true)
	return job, err
}

// UpdateJob replaces the full job record.
func (c *Client) UpdateJob(ctx context.Context, job entities.Job) (entities.Job, error) {
	var updated entities.Job
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/jobs/%d", job.ID), ports.ReplaceJobFrom(job), &updated, true)
	return updated, err
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/jobs/%d", id), nil, nil, true)
}

// ListMembers fetches the whole team.
func (c *Client) ListMembers(ctx context.Context) ([]entities.Member, error) {
	var members []entities.Member
	if err := c.do(ctx, http.MethodGet, "/team", nil, &members, true); err != nil {
		return nil, err
	}
	return members, nil
}

// CreateMember posts a new team member.
func (c *Client) CreateMember(ctx context.Context, req ports.CreateMemberRequest) (entities.Member, error) {
	var member entities.Member
	err := c.do(ctx, http.MethodPost, "/team", req, &member, true)
	return member, err
}

// UpdateMember replaces the full member record.
func (c *Client) UpdateMember(ctx context.Context, member entities.Member) (entities.Member, error) {
	var updated entities.Member
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/team/%d", member.ID), ports.ReplaceMemberFrom(member), &updated, true)
	return updated, err
}

// DeleteMember removes a team member.
func (c *Client) DeleteMember(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/team/%d", id), nil, nil, true)
}

type apiError struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	op := method + " " + path

	var token string
	if auth {
		var err error
		token, err = c.tokens.Load()
		if err != nil {
			return &entities.RequestError{Op: op, Err: err}
		}
		if token == "" {
			return &entities.RequestError{Op: op, Status: http.StatusUnauthorized, Err: entities.ErrNotAuthenticated}
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &entities.RequestError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, path, token, payload, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &entities.RequestError{Op: op, Err: err}
	}
	if err != nil {
		var re *entities.RequestError
		if errors.As(err, &re) && auth && re.Unauthorized() {
			if clearErr := c.tokens.Clear(); clearErr != nil {
				c.logger.Warnw("Failed to clear rejected token", "error", clearErr)
			}
		}
		return err
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path, token string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &entities.RequestError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
		return &entities.RequestError{Op: op, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debugw("API request", "op", op, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, &apiErr)
		re := &entities.RequestError{Op: op, Status: resp.StatusCode}
		if apiErr.Message != "" {
			re.Err = errors.New(apiErr.Message)
		}
		return re
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &entities.RequestError{Op: op, Timeout: true, Err: err}
		}
		return &entities.RequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
