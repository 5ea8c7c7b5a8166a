package core

type ProviderAuthType string

const (
	ProviderAuthTypeUnknown ProviderAuthType = ""
	ProviderAuthTypeAPIKey  ProviderAuthType = "api_key"
	ProviderAuthTypeOAuth   ProviderAuthType = "oauth"
)

// ProviderAuthSpec defines how a provider authenticates and which credential
// store entry it reads.
type ProviderAuthSpec struct {
	Type          ProviderAuthType
	CredentialKey string
}

// ProviderSetupSpec describes setup entry points and quickstart instructions.
type ProviderSetupSpec struct {
	DocsURL    string
	Quickstart []string
}

// ProviderSpec is the canonical provider definition used for registration and UI metadata.
type ProviderSpec struct {
	ID    string
	Info  ProviderInfo
	Auth  ProviderAuthSpec
	Setup ProviderSetupSpec
}
