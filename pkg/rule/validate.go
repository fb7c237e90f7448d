package rule

import (
	"fmt"

	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/types"
)

// ValidateProfile checks required fields, compiles the patterns and runs the
// profile's examples through the compiled filter.
func ValidateProfile(p *types.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if p.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if p.Name == "" {
		return fmt.Errorf("profile %s: name is required", p.ID)
	}
	if len(p.Patterns) == 0 {
		return fmt.Errorf("profile %s: at least one pattern is required", p.ID)
	}

	f, err := section.Compile(p.SectionConfig())
	if err != nil {
		return fmt.Errorf("profile %s: %w", p.ID, err)
	}

	for _, ex := range p.Examples {
		ok, err := f.Matches(ex)
		if err != nil {
			return fmt.Errorf("profile %s: example %q: %w", p.ID, ex, err)
		}
		if !ok {
			return fmt.Errorf("profile %s: example %q does not match", p.ID, ex)
		}
	}
	for _, ex := range p.NegativeExamples {
		ok, err := f.Matches(ex)
		if err != nil {
			return fmt.Errorf("profile %s: negative example %q: %w", p.ID, ex, err)
		}
		if ok {
			return fmt.Errorf("profile %s: negative example %q matches", p.ID, ex)
		}
	}

	if expected := p.ComputeStructuralID(); p.StructuralID != "" && p.StructuralID != expected {
		return fmt.Errorf("profile %s has inconsistent StructuralID: got %s, expected %s",
			p.ID, p.StructuralID, expected)
	}

	return nil
}

// ValidateProfileSet checks a set against the known profile IDs.
// knownIDs may be nil to skip reference checking.
func ValidateProfileSet(s *types.ProfileSet, knownIDs map[string]bool) error {
	if s == nil {
		return fmt.Errorf("profile set is nil")
	}
	if s.ID == "" {
		return fmt.Errorf("profile set ID is required")
	}
	if s.Name == "" {
		return fmt.Errorf("profile set %s: name is required", s.ID)
	}
	if len(s.ProfileIDs) == 0 {
		return fmt.Errorf("profile set %s must reference at least one profile", s.ID)
	}

	seen := make(map[string]bool)
	for _, id := range s.ProfileIDs {
		if knownIDs != nil && !knownIDs[id] {
			return fmt.Errorf("profile set %s references unknown profile ID: %s", s.ID, id)
		}
		if seen[id] {
			return fmt.Errorf("profile set %s contains duplicate profile ID: %s", s.ID, id)
		}
		seen[id] = true
	}

	return nil
}

// ValidateAll validates profiles and sets together, also rejecting duplicate
// profile IDs. It returns every problem found.
func ValidateAll(profiles []*types.Profile, sets []*types.ProfileSet) []error {
	var errs []error

	known := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if err := ValidateProfile(p); err != nil {
			errs = append(errs, err)
			continue
		}
		if known[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate profile ID: %s", p.ID))
		}
		known[p.ID] = true
	}
	for _, s := range sets {
		if err := ValidateProfileSet(s, known); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
