// Package parkref builds and parses the composite park reference used by
// visits. Parks and cities live only in the local catalog while visits sync
// remotely, so a visit can never hold a store-level foreign key to a park:
// the park may not exist yet on the device decoding the visit. The reference
// "{cityMachineName}:{externalID}" survives that gap and resolves lazily.
package parkref

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownCity is the city segment used when a park has no city.
const UnknownCity = "unknown"

// ErrMalformed is returned by Parse for input that is not exactly two
// non-empty colon-separated segments.
var ErrMalformed = errors.New("malformed park reference")

// Generate returns the composite reference for a park. It is total: an empty
// city falls back to UnknownCity, and an empty external id falls back to the
// park's own identity value.
func Generate(cityMachineName, externalID, parkID string) string {
	city := cityMachineName
	if city == "" {
		city = UnknownCity
	}
	ext := externalID
	if ext == "" {
		ext = parkID
	}
	return city + ":" + ext
}

// Parse splits a composite reference into its city and external id segments.
// Input with zero or more than one colon is malformed. Multi-colon input is
// rejected outright rather than truncated to the first segment, since a
// silently mis-split reference would resolve to the wrong park.
func Parse(ref string) (cityMachineName, externalID string, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, ref)
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, ref)
	}
	return parts[0], parts[1], nil
}
