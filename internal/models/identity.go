package models

import (
	"strings"
	"unicode"
)

// Identity addresses a participant as "Name-Realm". The name never
// contains a dash, the realm may ("Nera-Azjol-Nerub"), so only the
// first dash splits the two parts. Case is preserved for display;
// search comparisons are case-insensitive.
type Identity string

func MakeIdentity(name, realm string) Identity {
	if realm == "" {
		return Identity(name)
	}
	return Identity(name + "-" + realm)
}

func (id Identity) IsEmpty() bool {
	return id == ""
}

// Name returns the display-name portion, the part before the first dash.
func (id Identity) Name() string {
	s := string(id)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		return s[:i]
	}
	return s
}

// Realm returns the realm portion, empty when the identity carries none.
func (id Identity) Realm() string {
	s := string(id)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// NameContainsFold reports whether the display-name portion contains
// token as a case-insensitive substring. token is expected lower-cased.
func (id Identity) NameContainsFold(token string) bool {
	return strings.Contains(strings.ToLower(id.Name()), token)
}

// CapitalizeName upper-cases the first rune and lower-cases the rest,
// the canonical form participant names take.
func CapitalizeName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
