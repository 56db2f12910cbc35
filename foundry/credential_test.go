package foundry

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/fake"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// countingCredential wraps fake.TokenCredential and counts token requests.
type countingCredential struct {
	fake.TokenCredential
	calls int
}

func (c *countingCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	c.calls++
	return c.TokenCredential.GetToken(ctx, opts)
}
