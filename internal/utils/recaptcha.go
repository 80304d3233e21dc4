package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaVerifier проверяет ответ CAPTCHA у провайдера.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response, remoteIP string) (*CaptchaResult, error)
}

type CaptchaResult struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// RecaptchaClient: Google reCAPTCHA siteverify.
type RecaptchaClient struct {
	Secret    string
	VerifyURL string
	HTTP      *http.Client
}

func NewRecaptchaClient(secret, verifyURL string, timeout time.Duration) *RecaptchaClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RecaptchaClient{
		Secret:    secret,
		VerifyURL: verifyURL,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

func (c *RecaptchaClient) Verify(ctx context.Context, response, remoteIP string) (*CaptchaResult, error) {
	form := url.Values{
		"secret":   {c.Secret},
		"response": {response},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("captcha read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("captcha verify: status %d", resp.StatusCode)
	}

	var result CaptchaResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("captcha parse response: %w", err)
	}
	return &result, nil
}

// NoopCaptcha: для локальной разработки (captcha.disabled).
type NoopCaptcha struct{}

func (NoopCaptcha) Verify(context.Context, string, string) (*CaptchaResult, error) {
	return &CaptchaResult{Success: true}, nil
}
