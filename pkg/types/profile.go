package types

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/netcfgkit/iossection/pkg/section"
)

// Profile is a named, reusable section selection.
type Profile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Patterns         []string `json:"patterns"`
	IgnoreCase       bool     `json:"ignorecase,omitempty"`
	Prefix           string   `json:"prefix,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`   // literal hints for prefiltering
	Examples         []string `json:"examples,omitempty"`   // header lines that must match
	NegativeExamples []string `json:"negative_examples,omitempty"`
	Categories       []string `json:"categories,omitempty"`
	StructuralID     string   `json:"structural_id,omitempty"`
}

// SectionConfig returns the engine configuration for the profile.
func (p *Profile) SectionConfig() section.Config {
	return section.Config{
		Patterns:   append([]string(nil), p.Patterns...),
		IgnoreCase: p.IgnoreCase,
		Prefix:     p.Prefix,
	}
}

// ComputeStructuralID hashes everything that influences matching, so two
// profiles with the same ID but different patterns are told apart in a store.
func (p *Profile) ComputeStructuralID() string {
	h := sha1.New()
	h.Write([]byte(p.Prefix))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(p.IgnoreCase)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(p.Patterns, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// ProfileSet groups profiles that are usually run together.
type ProfileSet struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ProfileIDs  []string `json:"profile_ids"`
}
