package sonaveeb

import (
	"fmt"
	"strings"
)

// Profile selects which of the two Sõnaveeb dictionaries is queried.
type Profile int

const (
	// ProfileLite is the learner dictionary.
	ProfileLite Profile = iota
	// ProfileAdvanced is the comprehensive dictionary.
	ProfileAdvanced
)

type urlTemplates struct {
	forms   string
	search  string
	details string
}

var profileURLs = map[Profile]urlTemplates{
	ProfileLite: {
		forms:   "/searchwordfrag/lite/%s",
		search:  "/search/lite/dlall/%s",
		details: "/worddetails/lite/%s",
	},
	ProfileAdvanced: {
		forms:   "/searchwordfrag/unif/%s",
		search:  "/search/unif/dlall/eki/%s",
		details: "/worddetails/unif/%s",
	},
}

func (p Profile) String() string {
	switch p {
	case ProfileLite:
		return "lite"
	case ProfileAdvanced:
		return "advanced"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lite", "simplified", "":
		return ProfileLite, nil
	case "advanced", "comprehensive", "unif":
		return ProfileAdvanced, nil
	default:
		return ProfileLite, fmt.Errorf("unknown dictionary profile %q", s)
	}
}
