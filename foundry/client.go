package foundry

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentfanout/logging"
)

const (
	// DefaultAPIVersion is the project API version sent with every request.
	DefaultAPIVersion = "2025-11-15-preview"
	// DefaultScope is the token scope requested from the credential.
	DefaultScope = "https://ai.azure.com/.default"
)

var (
	// ErrMissingEndpoint is returned when no project endpoint is configured.
	ErrMissingEndpoint = errors.New("foundry: project endpoint is required")
	// ErrMissingCredential is returned when no token credential is configured.
	ErrMissingCredential = errors.New("foundry: credential is required")
)

// APIError is the error returned for non-2xx service responses. Use
// errors.As to inspect the status code and raw response.
type APIError = openai.Error

// Options configures a Client.
type Options struct {
	APIVersion string
	Scope      string
	// HTTPClient overrides the transport, mainly for tests and proxies.
	HTTPClient *http.Client
	// MaxRetries is the SDK level retry count for transient HTTP failures.
	MaxRetries int
	Logger     logging.Logger
	// RequestOptions are appended to every request.
	RequestOptions []option.RequestOption
}

// Client talks to one Foundry project.
type Client struct {
	endpoint string
	opts     Options
	oai      openai.Client
}

// NewClient creates a Client for the project endpoint, e.g.
// "https://<resource>.services.ai.azure.com/api/projects/<project>".
func NewClient(endpoint string, credential azcore.TokenCredential, optFns ...func(o *Options)) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	if credential == nil {
		return nil, ErrMissingCredential
	}

	opts := Options{
		APIVersion: DefaultAPIVersion,
		Scope:      DefaultScope,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	reqOpts := []option.RequestOption{
		option.WithBaseURL(endpoint + "/openai/"),
		option.WithQuery("api-version", opts.APIVersion),
		option.WithMaxRetries(opts.MaxRetries),
		option.WithMiddleware(
			bearerTokenMiddleware(credential, opts.Scope),
			loggingMiddleware(opts.Logger),
		),
	}

	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	reqOpts = append(reqOpts, opts.RequestOptions...)

	return &Client{
		endpoint: endpoint,
		opts:     opts,
		oai:      openai.NewClient(reqOpts...),
	}, nil
}

// Endpoint returns the normalized project endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// projectScoped routes a request to the project root instead of the
// OpenAI-compatible sub path.
func (c *Client) projectScoped() option.RequestOption {
	return option.WithBaseURL(c.endpoint + "/")
}

func wrapErr(op string, err error) error {
	return fmt.Errorf("foundry: %s: %w", op, err)
}

// IsNotFound reports whether err is a 404 service response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
