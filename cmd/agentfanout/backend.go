package main

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/hupe1980/agentfanout/config"
	"github.com/hupe1980/agentfanout/foundry"
	"github.com/hupe1980/agentfanout/logging"
	"github.com/hupe1980/agentfanout/model"
	"github.com/hupe1980/agentfanout/model/anthropic"
	"github.com/hupe1980/agentfanout/model/openai"
)

// credentialFunc resolves the token credential for the foundry backend.
// Tests replace it with a fake.
var credentialFunc = func() (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}

// newFoundryClient creates a project client for the configured endpoint.
func newFoundryClient(cfg *config.Config, logger logging.Logger) (*foundry.Client, error) {
	if cfg.Project.Endpoint == "" {
		return nil, config.ErrMissingEndpoint
	}

	cred, err := credentialFunc()
	if err != nil {
		return nil, fmt.Errorf("acquire credential: %w", err)
	}

	return foundry.NewClient(cfg.Project.Endpoint, cred, func(o *foundry.Options) {
		if cfg.Project.APIVersion != "" {
			o.APIVersion = cfg.Project.APIVersion
		}

		o.MaxRetries = 2
		o.Logger = logger
	})
}

// newCaller selects the backend that answers target calls.
func newCaller(cfg *config.Config, backend string, logger logging.Logger) (model.Model, error) {
	switch backend {
	case config.BackendFoundry:
		client, err := newFoundryClient(cfg, logger)
		if err != nil {
			return nil, err
		}

		return foundry.NewAgentCaller(client), nil
	case config.BackendOpenAI:
		return openai.NewModel(), nil
	case config.BackendAnthropic:
		return anthropic.NewModel(), nil
	case config.BackendMock:
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, backend)
	}
}
