package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/maa-labs/maa-cli/internal/output"
)

var errNotFound = errors.New("not found")

// List returns the releases of a component, newest first as GitHub orders them.
func (p *Provider) List(ctx context.Context, c Component) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=100", p.apiBase, c.Repo)
	var releases []Release
	if err := p.getJSON(ctx, url, &releases); err != nil {
		return nil, fmt.Errorf("listing %s releases: %w", c.Name, err)
	}
	p.rewriteAssets(releases)
	return releases, nil
}

// Tag fetches one release by tag, trying the tag with and without a "v" prefix.
func (p *Provider) Tag(ctx context.Context, c Component, version string) (*Release, error) {
	for _, tag := range tagCandidates(version) {
		url := fmt.Sprintf("%s/repos/%s/releases/tags/%s", p.apiBase, c.Repo, tag)
		var rel Release
		err := p.getJSON(ctx, url, &rel)
		if errors.Is(err, errNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetching %s release %s: %w", c.Name, tag, err)
		}
		rels := []Release{rel}
		p.rewriteAssets(rels)
		return &rels[0], nil
	}
	return nil, fmt.Errorf("%s release %s not found", c.Name, version)
}

// User validates a token and returns the login it belongs to.
func (p *Provider) User(ctx context.Context, token string) (string, error) {
	req, err := p.newRequest(ctx, p.apiBase+"/user")
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user struct {
		Login string `json:"login"`
	}
	if err := p.do(req, &user); err != nil {
		return "", fmt.Errorf("validating token: %w", err)
	}
	if user.Login == "" {
		return "", fmt.Errorf("validating token: response has no login")
	}
	return user.Login, nil
}

func (p *Provider) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "maa-cli")
	return req, nil
}

func (p *Provider) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := p.newRequest(ctx, url)
	if err != nil {
		return err
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	return p.do(req, v)
}

func (p *Provider) do(req *http.Request, v interface{}) error {
	output.Debug("github request", "url", req.URL.String())
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errNotFound
	case http.StatusUnauthorized:
		return fmt.Errorf("GitHub rejected the token (status 401)")
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("GitHub API rate limit exceeded. Run `maa auth` or set GITHUB_TOKEN for higher limits")
	default:
		return fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response JSON: %w", err)
	}
	return nil
}

// download fetches an asset into memory.
func (p *Provider) download(ctx context.Context, asset *Asset) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", "maa-cli")
	if p.token != "" && p.mirror == "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	output.Debug("downloading asset", "name", asset.Name, "url", asset.DownloadURL)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download of %s returned status %d", asset.Name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download stream: %w", err)
	}
	return data, nil
}

// rewriteAssets points asset download URLs at the mirror, if one is set.
func (p *Provider) rewriteAssets(releases []Release) {
	if p.mirror == "" {
		return
	}
	base := strings.TrimRight(p.mirror, "/")
	for i := range releases {
		for j := range releases[i].Assets {
			a := &releases[i].Assets[j]
			a.DownloadURL = base + "/" + releases[i].TagName + "/" + a.Name
		}
	}
}
