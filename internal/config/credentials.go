package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

// Credential store keys.
const (
	CredentialAntigravity = "google-antigravity"
	CredentialCopilot     = "github-copilot"
	CredentialGateway     = "openrouter"
)

// Credential is one vendor entry of the host runtime's auth.json.
type Credential struct {
	Type      string `json:"type"`
	Access    string `json:"access,omitempty"`
	Refresh   string `json:"refresh,omitempty"`
	Expires   int64  `json:"expires,omitempty"` // Unix millis
	ProjectID string `json:"projectId,omitempty"`
	Key       string `json:"key,omitempty"`
}

// Token returns the bearer token for the credential: the API key for
// api_key entries, the access token otherwise.
func (c Credential) Token() string {
	if strings.TrimSpace(c.Key) != "" {
		return strings.TrimSpace(c.Key)
	}
	return strings.TrimSpace(c.Access)
}

func (c Credential) ExpiresAt() time.Time {
	if c.Expires <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.Expires)
}

func (c Credential) Expired(now time.Time) bool {
	exp := c.ExpiresAt()
	return !exp.IsZero() && now.After(exp)
}

// AuthStore reads credentials from a JSON document keyed by vendor name.
// The store is owned by the host runtime and is never written here.
type AuthStore struct {
	Path string
}

func NewAuthStore(path string) AuthStore {
	return AuthStore{Path: path}
}

func LoadAuthFrom(path string) (map[string]Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	creds := make(map[string]Credential)
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials %s: %w", path, err)
	}
	return creds, nil
}

// Lookup returns the entry for provider. Every failure is a *core.AuthError.
func (s AuthStore) Lookup(provider string) (Credential, error) {
	creds, err := LoadAuthFrom(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credential{}, &core.AuthError{Provider: provider, Reason: fmt.Sprintf("no credential store at %s", s.Path)}
		}
		return Credential{}, &core.AuthError{Provider: provider, Reason: err.Error()}
	}
	cred, ok := creds[provider]
	if !ok {
		return Credential{}, &core.AuthError{Provider: provider, Reason: fmt.Sprintf("no %q entry in %s", provider, s.Path)}
	}
	return cred, nil
}
