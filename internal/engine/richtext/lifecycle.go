package richtext

// Lifecycle is the teardown state of a fragment or text.
type Lifecycle uint8

const (
	// Active accepts edits, registrations and migrations.
	Active Lifecycle = iota
	// TearingDown is in the middle of destruction; registration callbacks
	// are ignored.
	TearingDown
	// Destroyed holds no registrations and rejects edits.
	Destroyed
)

// String returns the lifecycle state name.
func (l Lifecycle) String() string {
	switch l {
	case Active:
		return "active"
	case TearingDown:
		return "tearing-down"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
