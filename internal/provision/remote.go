// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultManifestURL is the raw manifest on the upstream default branch.
	DefaultManifestURL = "https://raw.githubusercontent.com/moorestech/mooresUnityMCP/refs/heads/master/UnityMcpServer/src/pyproject.toml"

	// DefaultRemoteTimeout bounds a single manifest fetch.
	DefaultRemoteTimeout = 10 * time.Second

	maxManifestBytes = 1 << 20
)

type (
	// VersionSource reports the latest published server version.
	VersionSource interface {
		LatestVersion(ctx context.Context) (string, error)
	}

	// RemoteResolver fetches the upstream manifest over HTTP. It never retries;
	// retry policy belongs to the caller.
	RemoteResolver struct {
		client      *http.Client
		manifestURL string
		timeout     time.Duration
		userAgent   string
	}

	// RemoteOption configures a RemoteResolver.
	RemoteOption func(*RemoteResolver)
)

// WithHTTPClient sets the HTTP client used for fetches.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteResolver) { r.client = c }
}

// WithManifestURL overrides the manifest location.
func WithManifestURL(url string) RemoteOption {
	return func(r *RemoteResolver) { r.manifestURL = url }
}

// WithTimeout bounds each fetch. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteResolver) { r.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) RemoteOption {
	return func(r *RemoteResolver) { r.userAgent = ua }
}

// NewRemoteResolver creates a RemoteResolver with the upstream defaults.
func NewRemoteResolver(opts ...RemoteOption) *RemoteResolver {
	r := &RemoteResolver{
		client:      http.DefaultClient,
		manifestURL: DefaultManifestURL,
		timeout:     DefaultRemoteTimeout,
		userAgent:   "mcpsetup",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ManifestURL returns the URL fetched by LatestVersion.
func (r *RemoteResolver) ManifestURL() string { return r.manifestURL }

// LatestVersion fetches the upstream manifest and returns its version.
// Transport failures and non-2xx responses wrap ErrNetwork.
func (r *RemoteResolver) LatestVersion(ctx context.Context) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.manifestURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", r.manifestURL, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", ErrNetwork, r.manifestURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: fetch %s: unexpected status %s", ErrNetwork, r.manifestURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrNetwork, r.manifestURL, err)
	}

	return ParseManifestVersion(string(body))
}
