// Package awsenv holds the per-run AWS client environment: region-keyed SDK
// configs and the caller account identity, fetched once and memoized.
package awsenv

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSAPI defines the STS API surface used here
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Env is passed by reference to every component that needs AWS access.
type Env struct {
	homeRegion string

	mu   sync.Mutex
	cfgs map[string]aws.Config

	// stsClient can be injected for testing; when nil it is built from the
	// home-region config on first use.
	stsClient STSAPI

	accountOnce sync.Once
	accountID   string
	accountErr  error
}

// New returns an Env whose global API calls go to homeRegion.
func New(homeRegion string) *Env {
	return &Env{
		homeRegion: homeRegion,
		cfgs:       make(map[string]aws.Config),
	}
}

// NewWithSTS returns an Env with an injected STS client.
func NewWithSTS(homeRegion string, client STSAPI) *Env {
	e := New(homeRegion)
	e.stsClient = client
	return e
}

// HomeRegion returns the region used for global API calls.
func (e *Env) HomeRegion() string {
	return e.homeRegion
}

// Config returns the SDK config for a region, loading it at most once per
// region for the lifetime of the run.
func (e *Env) Config(ctx context.Context, region string) (aws.Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg, ok := e.cfgs[region]; ok {
		return cfg, nil
	}

	slog.Debug("Loading AWS configuration", "region", region)
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for region %s: %w", region, err)
	}
	e.cfgs[region] = cfg
	return cfg, nil
}

// AccountID returns the caller's account id. The underlying STS call is made
// exactly once per process; concurrent callers share the memoized result.
func (e *Env) AccountID(ctx context.Context) (string, error) {
	e.accountOnce.Do(func() {
		client := e.stsClient
		if client == nil {
			cfg, err := e.Config(ctx, e.homeRegion)
			if err != nil {
				e.accountErr = err
				return
			}
			client = sts.NewFromConfig(cfg)
		}

		out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			e.accountErr = fmt.Errorf("failed to resolve caller identity: %w", err)
			return
		}
		e.accountID = aws.ToString(out.Account)
		slog.Debug("Resolved caller account", "account_id", e.accountID)
	})
	return e.accountID, e.accountErr
}
