// Package release downloads prebuilt archives of the runtime components a
// project depends on (MaaFramework and its UIs) from GitHub releases.
// Archives are cached per component and tag under the cache directory.
package release
