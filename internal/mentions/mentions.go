package mentions

import (
	"fmt"
	"sort"
	"strings"
)

// Map maps a requester role to the reviewer roles that should be
// mentioned on (and may decide) a request submitted by a holder of
// that role. It is not required to be symmetric or injective
type Map map[string][]string

// Resolution is the outcome of resolving a submitter's roles against
// the map: who gets mentioned, and who may decide
type Resolution struct {
	// NotifyRoles is deduplicated but keeps first-seen order so the
	// mention line of a notification is stable
	NotifyRoles []string

	// AuthorizedRoles is the same set without ordering semantics
	AuthorizedRoles map[string]bool
}

// IsAuthorized reports whether any of `roles` may decide the request
func (r Resolution) IsAuthorized(roles []string) bool {
	for _, role := range roles {
		if r.AuthorizedRoles[role] {
			return true
		}
	}
	return false
}

// Resolve walks the submitter's roles in order and unions their
// configured targets. A submitter with no mapped roles resolves to
// empty sets: the submission still goes through, nobody is notified,
// and nobody is authorized to decide it
func Resolve(submitterRoles []string, m Map) Resolution {
	resolution := Resolution{
		NotifyRoles:     []string{},
		AuthorizedRoles: map[string]bool{},
	}
	for _, role := range submitterRoles {
		for _, target := range m[role] {
			if resolution.AuthorizedRoles[target] {
				continue
			}
			resolution.AuthorizedRoles[target] = true
			resolution.NotifyRoles = append(resolution.NotifyRoles, target)
		}
	}
	return resolution
}

// Upsert replaces the entry for `role` wholesale (no merging with the
// previous targets) and returns the updated map for persistence
func Upsert(m Map, role string, targets []string) Map {
	if m == nil {
		m = Map{}
	}
	m[role] = targets
	return m
}

// ParseTargets splits a comma-separated list of role names as entered
// on the administrative surface
func ParseTargets(input string) []string {
	targets := []string{}
	for _, target := range strings.Split(input, ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		targets = append(targets, target)
	}
	return targets
}

// Format renders the map for display, one role per line, in a stable
// order
func Format(m Map) string {
	if len(m) == 0 {
		return "the mention map is empty"
	}
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	lines := make([]string, 0, len(roles))
	for _, role := range roles {
		lines = append(lines, fmt.Sprintf("%s: %s", role, strings.Join(m[role], ", ")))
	}
	return strings.Join(lines, "\n")
}
