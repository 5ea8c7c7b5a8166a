package antigravity

import (
	"log"
	"os"
	"path/filepath"
)

// writeDiagnostics keeps the latest raw response of each call. Failures are
// logged only; they never affect the fetch result.
func (p *Provider) writeDiagnostics(method string, body []byte) {
	if p.opts.LogDir == "" {
		return
	}
	if err := os.MkdirAll(p.opts.LogDir, 0o755); err != nil {
		log.Printf("[antigravity] diagnostics dir: %v", err)
		return
	}
	path := filepath.Join(p.opts.LogDir, "antigravity-"+method+".json")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		log.Printf("[antigravity] diagnostics write %s: %v", path, err)
	}
}
