package foundry

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentfanout/logging"
)

// tokenRefreshSkew renews cached tokens this long before they expire.
const tokenRefreshSkew = 2 * time.Minute

// tokenCache hands out bearer tokens, refreshing them shortly before expiry.
type tokenCache struct {
	cred  azcore.TokenCredential
	scope string

	mu    sync.Mutex
	token azcore.AccessToken
}

func (tc *tokenCache) get(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.token.Token != "" && time.Until(tc.token.ExpiresOn) > tokenRefreshSkew {
		return tc.token.Token, nil
	}

	tok, err := tc.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{tc.scope}})
	if err != nil {
		return "", err
	}

	tc.token = tok

	return tok.Token, nil
}

func bearerTokenMiddleware(cred azcore.TokenCredential, scope string) option.Middleware {
	tc := &tokenCache{cred: cred, scope: scope}

	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		tok, err := tc.get(req.Context())
		if err != nil {
			return nil, fmt.Errorf("foundry: acquire token: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+tok)

		return next(req)
	}
}

func loggingMiddleware(logger logging.Logger) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		start := time.Now()

		resp, err := next(req)
		if err != nil {
			logger.Debug("Foundry request failed", "method", req.Method, "path", req.URL.Path, "duration", time.Since(start), "error", err)
			return resp, err
		}

		logger.Debug("Foundry request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

		return resp, nil
	}
}
