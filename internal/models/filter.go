package models

import "fmt"

// Filter is one of the fixed per-frame transforms. It is a closed
// enumeration: ParseFilter is the only way a value enters the system, so
// every switch over Filter can treat the six constants as exhaustive.
type Filter string

const (
	FilterGrayscale Filter = "grayscale"
	FilterBlur      Filter = "blur"
	FilterEdge      Filter = "edge"
	FilterPixelate  Filter = "pixelate"
	FilterSepia     Filter = "sepia"
	FilterNegative  Filter = "negative"
)

// Filters lists every valid filter in presentation order.
var Filters = []Filter{
	FilterGrayscale,
	FilterBlur,
	FilterEdge,
	FilterPixelate,
	FilterSepia,
	FilterNegative,
}

// ParseFilter validates a user-supplied filter name.
func ParseFilter(name string) (Filter, error) {
	for _, f := range Filters {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", name)
}

func (f Filter) String() string { return string(f) }

// Grayscale output is single-channel; everything else stays 3-channel BGR.
func (f Filter) OutputChannels() int {
	if f == FilterGrayscale {
		return 1
	}
	return 3
}
