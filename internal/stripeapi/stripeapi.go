// Package stripeapi wraps the Stripe API calls made on behalf of linked users.
package stripeapi

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82/client"
)

// Account is the subset of the Stripe account record used during linking.
type Account struct {
	Email string
}

// AccountLookup retrieves account metadata for the secret key obtained during
// linking. Failures are fatal to the link operation.
type AccountLookup interface {
	RetrieveAccount(ctx context.Context, secretKey string) (*Account, error)
}

// Client talks to the live Stripe API. Each user links with their own secret
// key, so a fresh API client is built per call rather than configuring a
// process-wide key.
type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// RetrieveAccount fetches the account that owns the given secret key.
func (c *Client) RetrieveAccount(ctx context.Context, secretKey string) (*Account, error) {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	acct, err := sc.Accounts.Get()
	if err != nil {
		return nil, fmt.Errorf("retrieve stripe account: %w", err)
	}
	return &Account{Email: acct.Email}, nil
}

var _ AccountLookup = (*Client)(nil)
