package rule

// yamlProfile mirrors one entry of a profiles file.
type yamlProfile struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description,omitempty"`
	Patterns         []string `yaml:"patterns"`
	IgnoreCase       bool     `yaml:"ignorecase,omitempty"`
	Prefix           string   `yaml:"prefix,omitempty"`
	Keywords         []string `yaml:"keywords,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
	Categories       []string `yaml:"categories,omitempty"`
}

// yamlProfilesFile is the top-level structure of a profiles file.
type yamlProfilesFile struct {
	Profiles []yamlProfile `yaml:"profiles"`
}

type yamlProfileSet struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	ProfileIDs  []string `yaml:"include_profile_ids"`
}

type yamlProfileSetsFile struct {
	Sets []yamlProfileSet `yaml:"profile_sets"`
}
