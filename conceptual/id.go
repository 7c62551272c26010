package conceptual

// PersonID identifies a tracked person.
// The upstream feed knows people only by their display name,
// so that's what this is, verbatim.
type PersonID string

func (p PersonID) String() string {
	return string(p)
}

func (p PersonID) Empty() bool {
	return p == ""
}
