// Package api implements the REST gateway to the mealforge backend. All
// transport and payload failures are classified at this boundary: callers
// only ever see typed errors from pkg/apperror.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/mealforge/mealforge-go/pkg/apperror"
	pkghttp "github.com/mealforge/mealforge-go/pkg/http"
	"github.com/mealforge/mealforge-go/pkg/log"
	"github.com/mealforge/mealforge-go/pkg/payload"
)

type (
	// TokenSource supplies the bearer credential for authenticated calls.
	// The session manager implements it: the token has a single owner and
	// the client only ever reads it.
	TokenSource interface {
		Token(ctx context.Context) (string, bool)
	}

	// UnauthorizedHook is invoked whenever an authenticated call comes back
	// with 401, before the error is returned to the caller. It must not
	// perform API calls.
	UnauthorizedHook func(ctx context.Context)

	Client struct {
		http   pkghttp.Client
		logger log.Logger

		mu             sync.RWMutex
		tokens         TokenSource
		onUnauthorized UnauthorizedHook
	}
)

func NewClient(httpClient pkghttp.Client, logger log.Logger) *Client {
	return &Client{
		http:   httpClient,
		logger: logger,
	}
}

// SetTokenSource wires the bearer credential provider. Called once at
// process start, after the session manager is constructed.
func (c *Client) SetTokenSource(src TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = src
}

// OnUnauthorized registers the global 401 hook. Called once at process
// start, after the session manager is constructed.
func (c *Client) OnUnauthorized(hook UnauthorizedHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = hook
}

// send performs a single API call and returns the decoded response document.
// A nil document with nil error means the server returned an empty success
// body. authed requests carry the bearer token and report 401 to the
// unauthorized hook.
func (c *Client) send(ctx context.Context, authed bool, method, url string, body any) (payload.Document, error) {
	req := c.http.NewRequest(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if authed {
		if token, ok := c.token(ctx); ok {
			req.SetAuthToken(token)
		}
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, apperror.Classify(err))
	}

	if resp.IsError() {
		typed := c.errorFromResponse(resp)
		if authed && typed.Kind == apperror.KindAuthentication {
			c.notifyUnauthorized(ctx)
		}
		return nil, fmt.Errorf("%s %s: %w", method, url, typed)
	}

	if len(resp.Body()) == 0 {
		return nil, nil
	}

	doc, err := payload.Decode(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	return doc, nil
}

// errorFromResponse maps an error response to a typed error, reading the
// conventional {"message": ..., "errors": {field: text}} body leniently: a
// missing or malformed body falls back to the HTTP status text.
func (c *Client) errorFromResponse(resp *resty.Response) *apperror.Error {
	statusCode := resp.StatusCode()

	var body map[string]any
	_ = json.Unmarshal(resp.Body(), &body)

	message := payload.String(body["message"], http.StatusText(statusCode))

	var fields map[string]string
	if rawFields, ok := body["errors"].(map[string]any); ok && len(rawFields) > 0 {
		fields = make(map[string]string, len(rawFields))
		for name, value := range rawFields {
			fields[name] = payload.String(value, "invalid")
		}
	}

	return apperror.FromStatus(statusCode, message, fields)
}

func (c *Client) token(ctx context.Context) (string, bool) {
	c.mu.RLock()
	src := c.tokens
	c.mu.RUnlock()

	if src == nil {
		return "", false
	}
	return src.Token(ctx)
}

func (c *Client) notifyUnauthorized(ctx context.Context) {
	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()

	if hook == nil {
		return
	}

	c.logger.Debug(ctx, "authenticated call rejected, invalidating session")
	hook(ctx)
}

// decodeEntity extracts the innermost payload object, optionally descending
// through entity keys, and decodes it into T.
func decodeEntity[T any](doc payload.Document, entityKeys ...string) (T, error) {
	var result T

	value, err := payload.Extract(doc, payload.KindObject, entityKeys...)
	if err != nil {
		return result, err
	}

	if err := remarshal(value, &result); err != nil {
		return result, err
	}

	return result, nil
}

// decodeEntityList is decodeEntity for list-shaped payloads.
func decodeEntityList[T any](doc payload.Document, entityKeys ...string) ([]T, error) {
	value, err := payload.Extract(doc, payload.KindList, entityKeys...)
	if err != nil {
		return nil, err
	}

	var result []T
	if err := remarshal(value, &result); err != nil {
		return nil, err
	}

	return result, nil
}

func remarshal(value, target any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperror.NewValidation(fmt.Sprintf("unencodable response payload: %v", err), nil)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperror.NewValidation(fmt.Sprintf("response payload has unexpected shape: %v", err), nil)
	}

	return nil
}
