package release

import (
	"fmt"
	"os"
	"path/filepath"
)

// cachePath returns <cache>/<component>/<tag>/<asset>.
func (p *Provider) cachePath(c Component, tag, asset string) string {
	return filepath.Join(p.cacheDir, c.ID, tag, asset)
}

// cached looks for a previously downloaded asset of tag matching triplet.
func (p *Provider) cached(c Component, tag, triplet string) (*Archive, bool) {
	entries, err := os.ReadDir(filepath.Join(p.cacheDir, c.ID, tag))
	if err != nil {
		return nil, false
	}
	assets := make([]Asset, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			assets = append(assets, Asset{Name: e.Name()})
		}
	}
	asset, err := SelectAsset(assets, triplet)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(p.cachePath(c, tag, asset.Name))
	if err != nil {
		return nil, false
	}
	return &Archive{Component: c.ID, Tag: tag, Asset: asset.Name, Data: data, Cached: true}, true
}

// store writes an asset to the cache via a temporary file and rename.
func (p *Provider) store(c Component, tag, asset string, data []byte) error {
	dest := p.cachePath(c, tag, asset)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating release cache: %w", err)
	}
	tmp := dest + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing release cache: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalizing release cache: %w", err)
	}
	return nil
}
