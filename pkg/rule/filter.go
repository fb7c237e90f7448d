package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/netcfgkit/iossection/pkg/types"
)

// FilterConfig selects profiles by ID.
type FilterConfig struct {
	Include []string // regex patterns; only matching profiles are kept
	Exclude []string // regex patterns; matching profiles are dropped
}

// ParsePatterns splits a comma-separated list and trims each element.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include then exclude patterns to profile IDs.
// An empty include list keeps everything.
func Filter(profiles []*types.Profile, config FilterConfig) ([]*types.Profile, error) {
	if len(profiles) == 0 {
		return profiles, nil
	}

	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	result := make([]*types.Profile, 0, len(profiles))
	for _, p := range profiles {
		if len(include) > 0 && !matchesAny(p.ID, include) {
			continue
		}
		if matchesAny(p.ID, exclude) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

func matchesAny(id string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}
