package event

import (
	"fmt"
	"strings"
)

// Vocabulary maps normalized label text to a canonical Kind.
type Vocabulary map[string]Kind

var defaultSynonyms = map[Kind][]string{
	Connect: {
		"connect", "session connect", "connection to user session", "logon", "log on",
		"login", "remote connect", "4624", "4778",
	},
	Disconnect: {
		"disconnect", "session disconnect", "disconnect from user session", "logoff",
		"log off", "logout", "shutdown", "remote disconnect", "4647", "4779", "7002", "1074",
	},
	Lock: {
		"lock", "session lock", "workstation lock", "workstation locked", "screen lock",
		"screensaver start", "4800", "4802",
	},
	Unlock: {
		"unlock", "session unlock", "workstation unlock", "workstation unlocked",
		"screen unlock", "screensaver stop", "4801", "4803",
	},
}

// DefaultVocabulary returns the built-in label set: canonical names, Windows
// scheduled-task trigger names and the Security/System event IDs.
func DefaultVocabulary() Vocabulary {
	v := make(Vocabulary)
	for kind, labels := range defaultSynonyms {
		for _, l := range labels {
			v[NormalizeLabel(l)] = kind
		}
	}
	return v
}

// NewVocabulary returns the defaults extended with synonyms, which map raw
// label text to a canonical kind name. Synonyms override defaults.
func NewVocabulary(synonyms map[string]string) (Vocabulary, error) {
	v := DefaultVocabulary()
	for label, target := range synonyms {
		kind, err := ParseKind(target)
		if err != nil {
			return nil, fmt.Errorf("synonym %q: %w", label, err)
		}
		key := NormalizeLabel(label)
		if key == "" {
			return nil, fmt.Errorf("synonym for %s has an empty label", kind)
		}
		v[key] = kind
	}
	return v, nil
}

// Lookup resolves a raw label.
func (v Vocabulary) Lookup(label string) (Kind, bool) {
	k, ok := v[NormalizeLabel(label)]
	return k, ok
}

// NormalizeLabel lowercases s, treats '_' and '-' as spaces and collapses runs
// of whitespace.
func NormalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
