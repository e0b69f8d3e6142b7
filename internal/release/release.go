// Package release knows where published builds live and how to compare the
// running version against them.
package release

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
)

// Slug identifies the GitHub repository releases are published to.
const Slug = "unitscope/unitscope"

// CheckLatest returns the newest published version, and whether it is newer
// than the running one. Development builds ("dev") never report an update.
func CheckLatest(ctx context.Context, current string) (latest string, newer bool, err error) {
	release, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Slug))
	if err != nil {
		return "", false, fmt.Errorf("checking releases: %w", err)
	}
	if !found || release == nil {
		return "", false, nil
	}
	if current == "" || current == "dev" {
		return release.Version(), false, nil
	}
	return release.Version(), release.GreaterThan(current), nil
}

// UpdateTo replaces the running executable with the given release build.
func UpdateTo(ctx context.Context, current string) (string, error) {
	release, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Slug))
	if err != nil {
		return "", fmt.Errorf("checking releases: %w", err)
	}
	if !found || release == nil {
		return "", fmt.Errorf("no published releases found for %s", Slug)
	}
	if current != "" && current != "dev" && !release.GreaterThan(current) {
		return release.Version(), nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		return "", fmt.Errorf("applying update to %s: %w", release.Version(), err)
	}
	return release.Version(), nil
}
