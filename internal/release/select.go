package release

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SelectAsset returns the first archive asset whose name carries triplet.
// Zip archives are preferred over tarballs.
func SelectAsset(assets []Asset, triplet string) (*Asset, error) {
	var fallback *Asset
	for i := range assets {
		name := assets[i].Name
		if !strings.Contains(name, triplet) || !isArchive(name) {
			continue
		}
		if strings.HasSuffix(name, ".zip") {
			return &assets[i], nil
		}
		if fallback == nil {
			fallback = &assets[i]
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("no asset for %s", triplet)
}

// Latest picks the highest semver release that is neither a draft nor a
// prerelease and carries an asset for triplet. Tags that are not semver
// are skipped.
func Latest(releases []Release, triplet string) (*Release, error) {
	var (
		best    *Release
		bestVer *semver.Version
	)
	for i := range releases {
		r := &releases[i]
		if r.Draft || r.Prerelease {
			continue
		}
		v, err := parseSemver(r.TagName)
		if err != nil || v.Prerelease() != "" {
			continue
		}
		if _, err := SelectAsset(r.Assets, triplet); err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = r, v
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no stable release with an asset for %s", triplet)
	}
	return best, nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimPrefix(version, "v"))
}

func isArchive(name string) bool {
	return strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}
