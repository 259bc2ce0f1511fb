// Package version holds build-time version information and the
// release update check.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Version and GitCommit are set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const releaseURL = "https://api.github.com/repos/GEROGIANNIS/GrubPower/releases/latest"

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckUpdate queries the latest release tag. It returns the latest tag and
// whether it differs from the running version.
func CheckUpdate() (string, bool, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(releaseURL)
	if err != nil {
		return "", false, fmt.Errorf("failed to query releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("unexpected status %s from release API", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", false, fmt.Errorf("failed to decode release info: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	current := strings.TrimPrefix(Version, "v")

	return rel.TagName, latest != "" && latest != current, nil
}
