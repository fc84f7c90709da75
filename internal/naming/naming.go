// Package naming derives storage-safe collection identifiers from human
// organization names.
package naming

import (
	"strings"
)

// Prefix namespaces every tenant collection so generated names can never
// collide with master collections such as "organizations".
const Prefix = "org_"

// CollectionID maps an organization name to its tenant collection identifier.
// The mapping is a pure function of the name: lowercase, spaces and hyphens
// become underscores, everything outside [a-z0-9_] is stripped, runs of
// underscores collapse, and leading/trailing underscores are trimmed.
//
// A name that sanitizes to nothing yields the bare Prefix. The codec accepts
// that degenerate id; the resulting collision is caught by the organization
// directory's name uniqueness check, not here.
func CollectionID(orgName string) string {
	return Prefix + sanitize(orgName)
}

func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		}
	}

	return strings.Trim(b.String(), "_")
}
