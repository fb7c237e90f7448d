package prefilter

import (
	"bytes"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/netcfgkit/iossection/pkg/types"
)

// Prefilter uses Aho-Corasick to skip profiles whose keywords never occur in
// a document. Keywords are matched case-insensitively since IOS keywords are
// case-insensitive on the device.
type Prefilter struct {
	matcher         *ahocorasick.Matcher
	keywords        []string         // lowercased keyword at each index
	keywordProfiles map[string][]int // keyword -> indexes of profiles needing it
	always          []int            // profiles without keywords
	profiles        []*types.Profile
}

// New creates a prefilter from profiles.
func New(profiles []*types.Profile) *Prefilter {
	pf := &Prefilter{
		keywordProfiles: make(map[string][]int),
		profiles:        profiles,
	}

	for i, p := range profiles {
		if len(p.Keywords) == 0 {
			pf.always = append(pf.always, i)
			continue
		}
		for _, kw := range p.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			if _, ok := pf.keywordProfiles[kw]; !ok {
				pf.keywords = append(pf.keywords, kw)
			}
			pf.keywordProfiles[kw] = append(pf.keywordProfiles[kw], i)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Filter returns the profiles that might match content, in their original
// order. It is safe for concurrent use.
func (pf *Prefilter) Filter(content []byte) []*types.Profile {
	selected := make([]bool, len(pf.profiles))
	for _, i := range pf.always {
		selected[i] = true
	}

	if pf.matcher != nil {
		for _, hit := range pf.matcher.MatchThreadSafe(bytes.ToLower(content)) {
			for _, i := range pf.keywordProfiles[pf.keywords[hit]] {
				selected[i] = true
			}
		}
	}

	result := make([]*types.Profile, 0, len(pf.profiles))
	for i, ok := range selected {
		if ok {
			result = append(result, pf.profiles[i])
		}
	}
	return result
}

// Keywords returns the distinct lowercased keywords the prefilter looks for.
func (pf *Prefilter) Keywords() []string {
	return append([]string(nil), pf.keywords...)
}
