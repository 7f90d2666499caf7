// Package location defines the interface to the platform location provider.
// The engine only ever reads the latest sample and the authorization state;
// it never drives the provider's lifecycle.
package location

// AuthorizationState mirrors the platform's location permission states.
type AuthorizationState int

const (
	AuthorizationNotDetermined AuthorizationState = iota
	AuthorizationDenied
	AuthorizationRestricted
	AuthorizationForeground
	AuthorizationAlways
)

func (s AuthorizationState) String() string {
	switch s {
	case AuthorizationNotDetermined:
		return "not-determined"
	case AuthorizationDenied:
		return "denied"
	case AuthorizationRestricted:
		return "restricted"
	case AuthorizationForeground:
		return "authorized-foreground"
	case AuthorizationAlways:
		return "authorized-always"
	default:
		return "unknown"
	}
}

// Authorized reports whether coordinate samples may be read at all.
func (s AuthorizationState) Authorized() bool {
	return s == AuthorizationForeground || s == AuthorizationAlways
}

// Coordinate is one location sample.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Provider supplies the authorization state and the most recent coordinate
// sample. Implemented outside this engine by the platform glue.
type Provider interface {
	Authorization() AuthorizationState
	// Latest returns the most recent sample, with ok=false when no sample
	// has arrived yet.
	Latest() (Coordinate, bool)
}

// Static is a fixed Provider for composition defaults and tests.
type Static struct {
	State  AuthorizationState
	Sample *Coordinate
}

func (s Static) Authorization() AuthorizationState { return s.State }

func (s Static) Latest() (Coordinate, bool) {
	if s.Sample == nil {
		return Coordinate{}, false
	}
	return *s.Sample, true
}
