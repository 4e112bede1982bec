package auth

import (
	"fmt"
	"regexp"
	"sort"

	sharedConfig "authgate/internal/shared/config"
)

// GroupResolver grants group membership by username pattern match,
// independent of which validator accepted the credential. Patterns are
// compiled once per configuration load.
type GroupResolver struct {
	enabled bool
	rules   map[string][]*regexp.Regexp
}

// NewGroupResolver compiles the configured regex rules. A pattern that fails
// to compile is a configuration error and aborts the load.
func NewGroupResolver(cfg sharedConfig.RegexGroupsConfig) (*GroupResolver, error) {
	rules := make(map[string][]*regexp.Regexp, len(cfg.Groups))
	for groupName, patterns := range cfg.Groups {
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, pattern := range patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid regex %q for group %q: %w", pattern, groupName, err)
			}
			compiled = append(compiled, re)
		}
		rules[groupName] = compiled
	}
	return &GroupResolver{enabled: cfg.Enabled, rules: rules}, nil
}

// Resolve returns every group whose rule set search-matches the username.
func (r *GroupResolver) Resolve(username string) []string {
	if r == nil || !r.enabled {
		return nil
	}

	var matched []string
	for groupName, patterns := range r.rules {
		for _, re := range patterns {
			if re.MatchString(username) {
				matched = append(matched, groupName)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

// Union merges two group lists, dropping duplicates. Order is stable for the
// first list and sorted for additions.
func Union(groups, extra []string) []string {
	if len(extra) == 0 {
		return groups
	}
	seen := make(map[string]struct{}, len(groups))
	merged := make([]string, 0, len(groups)+len(extra))
	for _, g := range groups {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		merged = append(merged, g)
	}
	added := make([]string, 0, len(extra))
	for _, g := range extra {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		added = append(added, g)
	}
	sort.Strings(added)
	return append(merged, added...)
}
