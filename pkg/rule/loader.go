package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/netcfgkit/iossection/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader reads section profiles from YAML.
type Loader struct {
	fs fs.FS // builtin profiles
}

// NewLoader creates a loader backed by the embedded builtin profiles.
func NewLoader() *Loader {
	return &Loader{fs: builtinFS}
}

// NewLoaderWithFS creates a loader whose builtin profiles come from fsys.
// fsys must contain "profiles/*.yml" and may contain "sets/*.yml".
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// LoadProfiles parses every profile in a YAML document.
func (l *Loader) LoadProfiles(data []byte) ([]*types.Profile, error) {
	var file yamlProfilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles found in YAML")
	}

	profiles := make([]*types.Profile, 0, len(file.Profiles))
	for _, yp := range file.Profiles {
		profiles = append(profiles, convertYAMLProfile(yp))
	}
	return profiles, nil
}

// LoadProfile parses a YAML document that must hold exactly one profile.
func (l *Loader) LoadProfile(data []byte) (*types.Profile, error) {
	profiles, err := l.LoadProfiles(data)
	if err != nil {
		return nil, err
	}
	if len(profiles) > 1 {
		return nil, fmt.Errorf("expected single profile, found %d", len(profiles))
	}
	return profiles[0], nil
}

// LoadProfileFile loads all profiles from a YAML file.
func (l *Loader) LoadProfileFile(path string) ([]*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	profiles, err := l.LoadProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// LoadPath loads profiles from a file or from every .yml/.yaml file below a
// directory, in lexical path order.
func (l *Loader) LoadPath(path string) ([]*types.Profile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("profiles path: %w", err)
	}
	if !info.IsDir() {
		return l.LoadProfileFile(path)
	}

	var profiles []*types.Profile
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}
		loaded, err := l.LoadProfileFile(p)
		if err != nil {
			return err
		}
		profiles = append(profiles, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles found below %s", path)
	}
	return profiles, nil
}

// LoadBuiltinProfiles loads every builtin profile.
func (l *Loader) LoadBuiltinProfiles() ([]*types.Profile, error) {
	var profiles []*types.Profile

	err := fs.WalkDir(l.fs, "profiles", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var file yamlProfilesFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, yp := range file.Profiles {
			profiles = append(profiles, convertYAMLProfile(yp))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

// LoadBuiltinProfileSets loads every builtin profile set. A filesystem
// without a sets directory yields no sets.
func (l *Loader) LoadBuiltinProfileSets() ([]*types.ProfileSet, error) {
	var sets []*types.ProfileSet

	if _, err := fs.Stat(l.fs, "sets"); err != nil {
		return sets, nil
	}

	err := fs.WalkDir(l.fs, "sets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var file yamlProfileSetsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, ys := range file.Sets {
			sets = append(sets, &types.ProfileSet{
				ID:          ys.ID,
				Name:        ys.Name,
				Description: ys.Description,
				ProfileIDs:  ys.ProfileIDs,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sets, nil
}

// Resolve returns the profiles with the given IDs, in the order of ids.
// An ID naming a profile set expands to the set's profiles.
func Resolve(profiles []*types.Profile, sets []*types.ProfileSet, ids []string) ([]*types.Profile, error) {
	byID := make(map[string]*types.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	setByID := make(map[string]*types.ProfileSet, len(sets))
	for _, s := range sets {
		setByID[s.ID] = s
	}

	var result []*types.Profile
	seen := make(map[string]bool)
	add := func(id string) error {
		p, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown profile: %s", id)
		}
		if !seen[id] {
			seen[id] = true
			result = append(result, p)
		}
		return nil
	}

	for _, id := range ids {
		if set, ok := setByID[id]; ok {
			for _, member := range set.ProfileIDs {
				if err := add(member); err != nil {
					return nil, fmt.Errorf("profile set %s: %w", id, err)
				}
			}
			continue
		}
		if err := add(id); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func convertYAMLProfile(yp yamlProfile) *types.Profile {
	p := &types.Profile{
		ID:               yp.ID,
		Name:             yp.Name,
		Description:      yp.Description,
		Patterns:         yp.Patterns,
		IgnoreCase:       yp.IgnoreCase,
		Prefix:           yp.Prefix,
		Keywords:         yp.Keywords,
		Examples:         yp.Examples,
		NegativeExamples: yp.NegativeExamples,
		Categories:       yp.Categories,
	}
	p.StructuralID = p.ComputeStructuralID()
	return p
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}
