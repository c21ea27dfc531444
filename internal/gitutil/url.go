package gitutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var prURLRegex = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

// ParsePullRequestURL parses a GitHub Pull Request URL and extracts the owner, repo, and PR number.
// Supported format: https://github.com/{owner}/{repo}/pull/{number}
func ParsePullRequestURL(rawURL string) (owner, repo string, prNumber int, err error) {
	rawURL = strings.TrimSuffix(rawURL, "/")

	matches := prURLRegex.FindStringSubmatch(rawURL)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid pull request URL format: %s", rawURL)
	}

	owner = matches[1]
	repo = matches[2]
	prNumberStr := matches[3]

	prNumber, err = strconv.Atoi(prNumberStr)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number '%s': %w", prNumberStr, err)
	}

	return owner, repo, prNumber, nil
}

// AuthenticatedURL injects an installation or PAT token into an HTTPS clone
// URL. Local paths pass through untouched; file:// is intentionally
// unsupported for security.
func AuthenticatedURL(repoURL, token string) (string, error) {
	if !strings.Contains(repoURL, "://") {
		return repoURL, nil
	}

	if !strings.HasPrefix(repoURL, "https://") && !strings.HasPrefix(repoURL, "http://") {
		return "", fmt.Errorf("invalid repository URL: %s", repoURL)
	}

	parsedURL, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse repository URL '%s': %w", repoURL, err)
	}
	if token != "" {
		parsedURL.User = url.UserPassword("x-access-token", token)
	}
	return parsedURL.String(), nil
}
