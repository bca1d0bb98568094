package nessus

import (
	"fmt"
	"strconv"
	"strings"
)

// Port is the network tuple a finding was detected on.
type Port struct {
	Number   uint
	Service  string
	Protocol string
}

// NewPort builds a Port from the raw attribute texts. A number that is
// missing or not an unsigned integer becomes 0.
func NewPort(number, service, protocol string) Port {
	n, err := strconv.ParseUint(strings.TrimSpace(number), 10, strconv.IntSize)
	if err != nil {
		n = 0
	}
	return Port{
		Number:   uint(n),
		Service:  service,
		Protocol: protocol,
	}
}

// String renders the canonical "<service> (<number>/<protocol>)" form.
// Empty service or protocol segments are emitted as-is.
func (p Port) String() string {
	return fmt.Sprintf("%s (%d/%s)", p.Service, p.Number, p.Protocol)
}
