// Package auth holds the API-key access policy for the HTTP service.
package auth

import (
	"strings"
)

// PolicyService manages API-key permissions for the document service.
type PolicyService struct {
	AdminKeys   map[string]bool // keys with write access
	AllowedKeys map[string]bool // keys with read access (if empty, all callers are allowed)
}

// NewPolicyService parses comma-separated key lists from configuration.
func NewPolicyService(adminKeysStr, allowedKeysStr string) *PolicyService {
	return &PolicyService{
		AdminKeys:   parseKeys(adminKeysStr),
		AllowedKeys: parseKeys(allowedKeysStr),
	}
}

func parseKeys(s string) map[string]bool {
	keys := make(map[string]bool)
	if s == "" {
		return keys
	}
	for _, key := range strings.Split(s, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys[key] = true
		}
	}
	return keys
}

// IsAdmin checks if a key may modify documents.
func (p *PolicyService) IsAdmin(key string) bool {
	return p.AdminKeys[key]
}

// IsAllowed checks if a key may read from the service.
func (p *PolicyService) IsAllowed(key string) bool {
	// An empty allowed list means the service is open to every caller.
	if len(p.AllowedKeys) == 0 {
		return true
	}
	if p.IsAdmin(key) {
		return true
	}
	return p.AllowedKeys[key]
}

// IsWriteAllowed checks if a key may upload, update or delete documents.
// With no admin keys configured, anyone allowed to read may also write.
func (p *PolicyService) IsWriteAllowed(key string) bool {
	if len(p.AdminKeys) == 0 {
		return p.IsAllowed(key)
	}
	return p.IsAdmin(key)
}
