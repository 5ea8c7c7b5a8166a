package core

type ProviderInfo struct {
	Name         string   // e.g. "GitHub Copilot"
	Capabilities []string // "quota_api", "credits", "reset_date"
	DocURL       string   // link to the vendor's quota documentation
}
