package appupdate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"

	"github.com/janekbaraniewski/usagebridge/internal/providers/shared"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/janekbaraniewski/usagebridge/releases/latest"
	defaultRequestTimeout   = 1500 * time.Millisecond
	binaryName              = "usagebridge"
	opLatestRelease         = "latest release"
)

type InstallMethod string

const (
	InstallMethodUnknown   InstallMethod = "unknown"
	InstallMethodHomebrew  InstallMethod = "homebrew"
	InstallMethodGoInstall InstallMethod = "go_install"
)

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	InstallMethod   InstallMethod
	UpgradeHint     string
}

// Check compares the running build against the latest published release.
// Development builds are never reported as outdated.
func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	currentVersion := normalizeReleaseVersion(opts.CurrentVersion)
	method := detectInstallMethod(resolveExecutablePath(opts.ExecutablePath))

	result := Result{
		CurrentVersion: currentVersion,
		InstallMethod:  method,
		UpgradeHint:    upgradeHint(method),
	}
	if currentVersion == "" {
		return result, nil
	}

	latestVersion, err := fetchLatestReleaseVersion(ctx, opts, currentVersion)
	if err != nil {
		return result, err
	}

	result.LatestVersion = latestVersion
	result.UpdateAvailable = semver.Compare(latestVersion, currentVersion) > 0
	return result, nil
}

func fetchLatestReleaseVersion(ctx context.Context, opts CheckOptions, currentVersion string) (string, error) {
	latestURL := strings.TrimSpace(opts.LatestReleaseURL)
	if latestURL == "" {
		latestURL = defaultLatestReleaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = shared.NewHTTPClient(timeout)
	}
	if token := strings.TrimSpace(os.Getenv("USAGEBRIDGE_GITHUB_TOKEN")); token != "" && shouldAttachGitHubToken(latestURL) {
		client = shared.BearerClient(client, token)
	}

	body, err := shared.DoJSON(requestCtx, client, shared.Request{
		Op:  opLatestRelease,
		URL: latestURL,
		Headers: map[string]string{
			"Accept":     "application/vnd.github+json",
			"User-Agent": binaryName + "/" + currentVersion,
		},
	})
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%s: invalid JSON payload", opLatestRelease)
	}

	tag := gjson.GetBytes(body, "tag_name").String()
	latest := normalizeReleaseVersion(tag)
	if latest == "" {
		return "", fmt.Errorf("%s: tag is not a stable semver: %q", opLatestRelease, tag)
	}
	return latest, nil
}

func resolveExecutablePath(explicitPath string) string {
	if p := strings.TrimSpace(explicitPath); p != "" {
		return normalizePathForMatch(p)
	}
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil && resolved != "" {
		exePath = resolved
	}
	return normalizePathForMatch(exePath)
}

func normalizePathForMatch(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

func detectInstallMethod(path string) InstallMethod {
	path = normalizePathForMatch(path)
	switch {
	case path == "":
		return InstallMethodUnknown
	case strings.Contains(path, "/cellar/"+binaryName+"/"):
		return InstallMethodHomebrew
	case looksLikeGoInstallPath(path):
		return InstallMethodGoInstall
	default:
		return InstallMethodUnknown
	}
}

func looksLikeGoInstallPath(path string) bool {
	path = strings.TrimSuffix(path, ".exe")
	if strings.HasSuffix(path, "/go/bin/"+binaryName) {
		return true
	}
	if gobin := normalizePathForMatch(os.Getenv("GOBIN")); gobin != "" && path == gobin+"/"+binaryName {
		return true
	}
	for _, gp := range filepath.SplitList(os.Getenv("GOPATH")) {
		if gopath := normalizePathForMatch(gp); gopath != "" && path == gopath+"/bin/"+binaryName {
			return true
		}
	}
	return false
}

func upgradeHint(method InstallMethod) string {
	switch method {
	case InstallMethodHomebrew:
		return "brew upgrade janekbaraniewski/tap/" + binaryName
	default:
		return "go install github.com/janekbaraniewski/usagebridge/cmd/usagebridge@latest"
	}
}

func normalizeReleaseVersion(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}

func shouldAttachGitHubToken(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Scheme, "https") && strings.EqualFold(parsed.Hostname(), "api.github.com")
}
