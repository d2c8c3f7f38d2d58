package voice

// Status is the installation state of a voice unit.
type Status int

const (
	// StatusUninstalled indicates the unit is not installed.
	StatusUninstalled Status = iota
	// StatusInstalling indicates an install job owns the unit.
	StatusInstalling
	// StatusInstalled indicates the unit is installed.
	StatusInstalled
	// StatusUninstalling indicates an uninstall job owns the unit.
	StatusUninstalling
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUninstalled:
		return "uninstalled"
	case StatusInstalling:
		return "installing"
	case StatusInstalled:
		return "installed"
	case StatusUninstalling:
		return "uninstalling"
	default:
		return "unknown"
	}
}

// InFlight reports whether a queue job currently owns the unit. In-flight
// units are exempt from passive reconciliation.
func (s Status) InFlight() bool {
	return s == StatusInstalling || s == StatusUninstalling
}

// transitions lists the legal status edges. The direct
// uninstalled<->installed edges belong to passive reconciliation; the
// edges through the in-flight states belong to the installer queue.
var transitions = map[Status][]Status{
	StatusUninstalled:  {StatusInstalling, StatusInstalled},
	StatusInstalling:   {StatusInstalled, StatusUninstalled},
	StatusInstalled:    {StatusUninstalling, StatusUninstalled},
	StatusUninstalling: {StatusUninstalled, StatusInstalled},
}

// ValidTransition reports whether from->to is a legal status edge.
func ValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
