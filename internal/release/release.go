package release

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/maa-labs/maa-cli/internal/branding"
	"github.com/maa-labs/maa-cli/internal/config"
)

// Release is a GitHub release as returned by the releases API.
type Release struct {
	Name       string    `json:"name"`
	TagName    string    `json:"tag_name"`
	Draft      bool      `json:"draft"`
	Prerelease bool      `json:"prerelease"`
	Assets     []Asset   `json:"assets"`
	Published  time.Time `json:"published_at"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Archive is a downloaded or cached release asset.
type Archive struct {
	Component string
	Tag       string
	Asset     string
	Data      []byte
	Cached    bool
}

// Provider fetches release archives for the host platform.
type Provider struct {
	httpClient *http.Client
	apiBase    string
	token      string
	mirror     string
	cacheDir   string
	goos       string
	goarch     string
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithAPIBase points the provider at a different GitHub API root.
func WithAPIBase(url string) Option {
	return func(p *Provider) { p.apiBase = strings.TrimRight(url, "/") }
}

// WithPlatform overrides the host OS and architecture used for triplets.
func WithPlatform(goos, goarch string) Option {
	return func(p *Provider) {
		p.goos = goos
		p.goarch = goarch
	}
}

// New creates a Provider from settings. GITHUB_TOKEN is used when no token
// is configured.
func New(s config.Settings, opts ...Option) (*Provider, error) {
	client, err := s.HTTPClient()
	if err != nil {
		return nil, err
	}
	p := &Provider{
		httpClient: client,
		apiBase:    strings.TrimRight(branding.GitHubAPI(), "/"),
		token:      s.Token,
		mirror:     s.Mirror,
		cacheDir:   s.ReleaseDir(),
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
	if p.token == "" {
		p.token = os.Getenv("GITHUB_TOKEN")
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Fetch returns the archive of component c for the host triplet. An empty
// version or "latest" selects the newest stable release; otherwise version
// names a tag, with or without a leading "v". Cached archives of an explicit
// tag are returned without network access.
func (p *Provider) Fetch(ctx context.Context, c Component, version string) (*Archive, error) {
	triplet, err := c.Triplet(p.goos, p.goarch)
	if err != nil {
		return nil, err
	}

	if !isLatest(version) {
		for _, tag := range tagCandidates(version) {
			if a, ok := p.cached(c, tag, triplet); ok {
				return a, nil
			}
		}
	}

	rel, asset, err := p.Resolve(ctx, c, version)
	if err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(p.cachePath(c, rel.TagName, asset.Name)); err == nil {
		return &Archive{Component: c.ID, Tag: rel.TagName, Asset: asset.Name, Data: data, Cached: true}, nil
	}

	data, err := p.download(ctx, asset)
	if err != nil {
		return nil, err
	}
	if err := p.store(c, rel.TagName, asset.Name, data); err != nil {
		return nil, err
	}
	return &Archive{Component: c.ID, Tag: rel.TagName, Asset: asset.Name, Data: data}, nil
}

// Resolve picks the release and asset Fetch would download.
func (p *Provider) Resolve(ctx context.Context, c Component, version string) (*Release, *Asset, error) {
	triplet, err := c.Triplet(p.goos, p.goarch)
	if err != nil {
		return nil, nil, err
	}

	if isLatest(version) {
		releases, err := p.List(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		rel, err := Latest(releases, triplet)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		asset, _ := SelectAsset(rel.Assets, triplet)
		return rel, asset, nil
	}

	rel, err := p.Tag(ctx, c, version)
	if err != nil {
		return nil, nil, err
	}
	asset, err := SelectAsset(rel.Assets, triplet)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", c.Name, rel.TagName, err)
	}
	return rel, asset, nil
}

func isLatest(version string) bool {
	return version == "" || version == "latest"
}

// tagCandidates returns the tag as given and with its "v" prefix toggled.
func tagCandidates(version string) []string {
	if strings.HasPrefix(version, "v") {
		return []string{version, strings.TrimPrefix(version, "v")}
	}
	return []string{version, "v" + version}
}
