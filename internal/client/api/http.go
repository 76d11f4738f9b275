package api

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
	"sync"
	"time"

	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// HTTPClient implements Client over the MedScan REST API. Every call is
// bounded by the configured timeout and is never retried.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter

	mu    sync.RWMutex
	token string
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRateLimit spaces outgoing calls to at most rps per second with the
// given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Signup(ctx context.Context, f models.SignUpFields) (AuthResult, error) {
	req := SignupRequest{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Password: f.Password}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, PathSignup, nil, req, &res); err != nil {
		return AuthResult{}, err
	}
	if res.User.Email == "" {
		res.User = models.UserProfile{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email}
	}
	return res, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, PathLogin, nil, LoginRequest{Email: email, Password: password}, &res); err != nil {
		return AuthResult{}, err
	}
	if res.User.Email == "" {
		res.User.Email = email
	}
	return res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, PathLogout, nil, nil, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context, email string) (models.UserProfile, error) {
	var p models.UserProfile
	q := url.Values{"email": []string{email}}
	if err := c.do(ctx, http.MethodGet, PathProfile, q, nil, &p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	var p models.UserProfile
	if err := c.do(ctx, http.MethodPut, PathUpdateProfile, nil, profile, &p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (c *HTTPClient) RequestReset(ctx context.Context, email string) (string, error) {
	var res MessageResponse
	if err := c.do(ctx, http.MethodPost, PathForgotPassword, nil, ForgotPasswordRequest{Email: email}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// VerifyResetCode is a no-op: the server checks the code together with the
// new password in CompleteReset.
func (c *HTTPClient) VerifyResetCode(ctx context.Context, email, code string) error {
	return nil
}

func (c *HTTPClient) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	req := VerifyResetRequest{Email: email, Code: code, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, PathVerifyReset, nil, req, nil)
}

func (c *HTTPClient) LookupMedicine(ctx context.Context, name string) (models.MedicineRecord, error) {
	var rec models.MedicineRecord
	if err := c.do(ctx, http.MethodGet, PathMedicine+url.PathEscape(name), nil, nil, &rec); err != nil {
		return models.MedicineRecord{}, err
	}
	return rec, nil
}

func (c *HTTPClient) SubmitOCR(ctx context.Context, image []byte) (models.MedicineRecord, error) {
	var res OCRResponse
	if err := c.do(ctx, http.MethodPost, PathScanOCR, nil, OCRRequest{Image: image}, &res); err != nil {
		return models.MedicineRecord{}, err
	}
	if res.Medicine.Name == "" {
		return models.MedicineRecord{}, common.ErrNotFound
	}
	return res.Medicine, nil
}

func (c *HTTPClient) SaveHistory(ctx context.Context, userID string, rec models.MedicineRecord) (bool, error) {
	var res SaveHistoryResponse
	if err := c.do(ctx, http.MethodPost, PathSaveHistory, nil, SaveHistoryRequest{UserID: userID, Medicine: rec}, &res); err != nil {
		return false, err
	}
	return res.Added, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, PathHealth, nil, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// the limiter refuses waits that would outlast the deadline
			return fmt.Errorf("%w: %w", common.ErrTimeout, err)
		}
		return transportError(ctx, err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", common.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb ErrorResponse
		_ = json.Unmarshal(data, &eb)
		return newError(resp.StatusCode, eb)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", common.ErrNetwork, path, err)
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", common.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", common.ErrNetwork, err)
}
