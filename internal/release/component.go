package release

import (
	"fmt"
	"sort"
)

// Symlink is a link created after a component is extracted. Link is
// relative to the project root; Target is relative to the link's directory.
type Symlink struct {
	Link   string
	Target string
}

// Component describes a downloadable release artifact.
type Component struct {
	ID   string
	Name string
	// Repo is the GitHub "owner/name" slug.
	Repo string
	// Folder is where the archive is extracted, relative to the project root.
	Folder   string
	UI       bool
	Symlinks []Symlink

	osNames   map[string]string
	archNames map[string]string
}

// Triplet returns the platform identifier the component's asset names carry.
func (c Component) Triplet(goos, goarch string) (string, error) {
	o, ok := c.osNames[goos]
	if !ok {
		return "", fmt.Errorf("%s has no release for OS %s", c.Name, goos)
	}
	a, ok := c.archNames[goarch]
	if !ok {
		return "", fmt.Errorf("%s has no release for architecture %s", c.Name, goarch)
	}
	return o + "-" + a, nil
}

var components = map[string]Component{
	"maa": {
		ID:        "maa",
		Name:      "MaaFramework",
		Repo:      "MaaXYZ/MaaFramework",
		Folder:    "deps",
		osNames:   map[string]string{"windows": "win", "linux": "linux", "darwin": "macos"},
		archNames: map[string]string{"amd64": "x86_64", "arm64": "aarch64"},
	},
	"mfaa": {
		ID:     "mfaa",
		Name:   "MFAAvalonia",
		Repo:   "SweetSmellFox/MFAAvalonia",
		Folder: "MFAAvalonia",
		UI:     true,
		Symlinks: []Symlink{
			{Link: "MFAAvalonia/resource", Target: "../assets/resource"},
			{Link: "MFAAvalonia/interface.json", Target: "../assets/interface.json"},
		},
		osNames:   map[string]string{"windows": "win", "linux": "linux", "darwin": "osx"},
		archNames: map[string]string{"amd64": "x64", "arm64": "arm64"},
	},
}

// Lookup returns the component registered under id.
func Lookup(id string) (Component, error) {
	c, ok := components[id]
	if !ok {
		return Component{}, fmt.Errorf("unknown component %q", id)
	}
	return c, nil
}

// UIs returns the ids of the UI components, sorted.
func UIs() []string {
	var ids []string
	for id, c := range components {
		if c.UI {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
