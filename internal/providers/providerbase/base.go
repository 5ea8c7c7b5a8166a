package providerbase

import "github.com/janekbaraniewski/usagebridge/internal/core"

// Base centralizes provider metadata. Vendor packages embed it and
// implement only Fetch().
type Base struct {
	spec core.ProviderSpec
}

func New(spec core.ProviderSpec) Base {
	normalized := spec
	if normalized.ID == "" {
		normalized.ID = "unknown"
	}
	if normalized.Info.Name == "" {
		normalized.Info.Name = normalized.ID
	}
	if normalized.Setup.DocsURL == "" {
		normalized.Setup.DocsURL = normalized.Info.DocURL
	}
	if normalized.Auth.CredentialKey == "" {
		normalized.Auth.CredentialKey = normalized.ID
	}

	return Base{spec: normalized}
}

func (b Base) ID() string {
	return b.spec.ID
}

func (b Base) Describe() core.ProviderInfo {
	return b.spec.Info
}

func (b Base) Spec() core.ProviderSpec {
	return b.spec
}

// CredentialKey is the auth store entry the provider reads.
func (b Base) CredentialKey() string {
	return b.spec.Auth.CredentialKey
}
