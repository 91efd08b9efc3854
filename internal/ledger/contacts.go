package ledger

import "strings"

// ContactRef is the minimum the resolver needs from a stored contact.
type ContactRef struct {
	ID   string
	Name string
}

// ResolutionKind tells the caller how a contact reference was resolved.
type ResolutionKind int

const (
	NotFound ResolutionKind = iota
	ResolvedByID
	ResolvedByName
	Ambiguous
)

// Resolution is the outcome of ResolveContact. Matches lists every
// candidate when the name is ambiguous.
type Resolution struct {
	Kind    ResolutionKind
	Contact ContactRef
	Matches []ContactRef
}

// Found reports whether exactly one contact was selected.
func (r Resolution) Found() bool {
	return r.Kind == ResolvedByID || r.Kind == ResolvedByName
}

// NormalizeName is the comparison key for name fallback matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ResolveContact prefers contactID and falls back to a case-insensitive
// name match. A name shared by several contacts is reported as Ambiguous
// instead of picking one.
func ResolveContact(contacts []ContactRef, contactID, name string) Resolution {
	if contactID != "" {
		for _, c := range contacts {
			if c.ID == contactID {
				return Resolution{Kind: ResolvedByID, Contact: c}
			}
		}
	}

	key := NormalizeName(name)
	if key == "" {
		return Resolution{Kind: NotFound}
	}

	var matches []ContactRef
	for _, c := range contacts {
		if NormalizeName(c.Name) == key {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return Resolution{Kind: NotFound}
	case 1:
		return Resolution{Kind: ResolvedByName, Contact: matches[0]}
	default:
		return Resolution{Kind: Ambiguous, Matches: matches}
	}
}

// BelongsToContact reports whether e references contact c, by ID or, for
// entries recorded before the contact existed, by name.
func BelongsToContact(e Entry, c ContactRef) bool {
	if e.ContactID != "" {
		return e.ContactID == c.ID
	}
	return e.Contact != "" && NormalizeName(e.Contact) == NormalizeName(c.Name)
}
