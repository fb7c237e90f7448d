package rule

import (
	"errors"
	"strings"
	"testing"

	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/types"
)

func validProfile() *types.Profile {
	p := &types.Profile{
		ID:               "test.interface",
		Name:             "Test Interfaces",
		Patterns:         []string{`interface\s+\S+`},
		Examples:         []string{"interface Loopback0"},
		NegativeExamples: []string{"ip routing"},
	}
	p.StructuralID = p.ComputeStructuralID()
	return p
}

func TestValidateProfile_Valid(t *testing.T) {
	if err := ValidateProfile(validProfile()); err != nil {
		t.Errorf("ValidateProfile failed for valid profile: %v", err)
	}
}

func TestValidateProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *types.Profile)
		wantErr string
	}{
		{"missing ID", func(p *types.Profile) { p.ID = "" }, "ID is required"},
		{"missing name", func(p *types.Profile) { p.Name = "" }, "name is required"},
		{"no patterns", func(p *types.Profile) { p.Patterns = nil }, "at least one pattern"},
		{"bad regex", func(p *types.Profile) { p.Patterns = []string{"(("} }, "invalid pattern"},
		{"example mismatch", func(p *types.Profile) { p.Examples = []string{"hostname r1"} }, "does not match"},
		{"negative example match", func(p *types.Profile) { p.NegativeExamples = []string{"interface Vlan1"} }, "negative example"},
		{"stale structural ID", func(p *types.Profile) { p.StructuralID = "deadbeef" }, "inconsistent StructuralID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)

			err := ValidateProfile(p)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateProfile_BadRegexIsConfigError(t *testing.T) {
	p := validProfile()
	p.Patterns = []string{"[unclosed"}

	err := ValidateProfile(p)
	if !errors.Is(err, section.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got: %v", err)
	}
}

func TestValidateProfile_Nil(t *testing.T) {
	err := ValidateProfile(nil)
	if err == nil || !strings.Contains(err.Error(), "nil") {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestValidateProfileSet(t *testing.T) {
	known := map[string]bool{"a": true, "b": true}

	tests := []struct {
		name    string
		set     *types.ProfileSet
		wantErr string
	}{
		{"valid", &types.ProfileSet{ID: "s", Name: "S", ProfileIDs: []string{"a", "b"}}, ""},
		{"nil", nil, "nil"},
		{"missing ID", &types.ProfileSet{Name: "S", ProfileIDs: []string{"a"}}, "ID is required"},
		{"missing name", &types.ProfileSet{ID: "s", ProfileIDs: []string{"a"}}, "name is required"},
		{"empty", &types.ProfileSet{ID: "s", Name: "S"}, "at least one profile"},
		{"unknown", &types.ProfileSet{ID: "s", Name: "S", ProfileIDs: []string{"c"}}, "unknown profile ID"},
		{"duplicate", &types.ProfileSet{ID: "s", Name: "S", ProfileIDs: []string{"a", "a"}}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileSet(tt.set, known)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateAll_DuplicateIDs(t *testing.T) {
	errs := ValidateAll([]*types.Profile{validProfile(), validProfile()}, nil)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "duplicate profile ID") {
		t.Errorf("expected one duplicate error, got: %v", errs)
	}
}

func TestValidateAll_CollectsEveryProblem(t *testing.T) {
	bad := validProfile()
	bad.ID = "test.bad"
	bad.Patterns = nil

	sets := []*types.ProfileSet{{ID: "set.x", Name: "X", ProfileIDs: []string{"test.missing"}}}

	errs := ValidateAll([]*types.Profile{validProfile(), bad, validProfile()}, sets)
	if len(errs) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(errs), errs)
	}
	want := []string{"at least one pattern", "duplicate profile ID", "unknown profile ID"}
	for i, w := range want {
		if !strings.Contains(errs[i].Error(), w) {
			t.Errorf("problem %d = %q, want it to contain %q", i, errs[i], w)
		}
	}

	if errs := ValidateAll([]*types.Profile{validProfile()}, nil); errs != nil {
		t.Errorf("expected nil for valid input, got %v", errs)
	}
}

func TestValidateAll_Builtin(t *testing.T) {
	loader := NewLoader()
	profiles, err := loader.LoadBuiltinProfiles()
	if err != nil {
		t.Fatalf("LoadBuiltinProfiles failed: %v", err)
	}
	sets, err := loader.LoadBuiltinProfileSets()
	if err != nil {
		t.Fatalf("LoadBuiltinProfileSets failed: %v", err)
	}

	for _, err := range ValidateAll(profiles, sets) {
		t.Error(err)
	}
}
