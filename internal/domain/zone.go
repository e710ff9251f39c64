package domain

// Zone is one entry of the taxi zone reference table: the descriptive triple
// attached to a location id.
type Zone struct {
	Zone        string
	Borough     string
	ServiceZone string
}

// ZoneLookup maps a location id to its descriptive triple. The resolver uses
// it with left-join semantics: a missing id resolves to all-Unknown.
type ZoneLookup map[int]Zone

// Resolve returns the triple for id, or an all-Unknown triple when the id is
// absent from the reference table.
func (l ZoneLookup) Resolve(id int) Zone {
	if z, ok := l[id]; ok {
		return z
	}
	return Zone{Zone: Unknown, Borough: Unknown, ServiceZone: Unknown}
}
