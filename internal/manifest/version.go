package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParsePluginVersion parses a plugin version, which must be strict semver
// (MAJOR.MINOR.PATCH with optional pre-release and build metadata).
func ParsePluginVersion(version string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("version %q is not MAJOR.MINOR.PATCH semver: %w", version, err)
	}
	return v, nil
}

// ParsePlatformVersion parses a minimum platform version. A leading "v" is
// tolerated and partial versions such as "1.2" are completed with zeros.
func ParsePlatformVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(version), "v"))
	if err != nil {
		return nil, fmt.Errorf("minimum platform version %q is not semver: %w", version, err)
	}
	return v, nil
}

// versionIssues checks the semver rules the JSON Schema cannot express.
func versionIssues(m *Manifest) []ValidationIssue {
	var issues []ValidationIssue
	if m.Version != "" {
		if _, err := ParsePluginVersion(m.Version); err != nil {
			issues = append(issues, ValidationIssue{Path: "/version", Message: err.Error(), Keyword: "semver"})
		}
	}
	if m.MinPlatformVersion != "" {
		if _, err := ParsePlatformVersion(m.MinPlatformVersion); err != nil {
			issues = append(issues, ValidationIssue{Path: "/minPlatformVersion", Message: err.Error(), Keyword: "semver"})
		}
	}
	return issues
}
