package fleetlink

import (
	"github.com/ystepanoff/fleetlink/datalink"
	"github.com/ystepanoff/fleetlink/driver/stub"
	"github.com/ystepanoff/fleetlink/driver/udp"
)

// NewHost starts a network host on driver with the given configuration.
func NewHost(driver RadioDriver, cfg Config) *Datalink {
	cfg.Host = true
	return datalink.New(driver, cfg)
}

// NewMember creates a participant that joins the first network it hears.
func NewMember(driver RadioDriver, cfg Config) *Datalink {
	cfg.Host = false
	return datalink.New(driver, cfg)
}

// NewSimulated attaches a participant to an in-process ether.
func NewSimulated(ether *stub.Ether, cfg Config) *Datalink {
	return datalink.New(ether.Attach(), cfg)
}

// NewUDP creates a participant on a multicast group. The caller closes the
// returned driver when done.
func NewUDP(radio udp.Config, cfg Config) (*Datalink, *udp.Driver, error) {
	if radio.Logger == nil {
		radio.Logger = cfg.Logger
	}
	drv, err := udp.New(radio)
	if err != nil {
		return nil, nil, err
	}
	return datalink.New(drv, cfg), drv, nil
}

// DefaultConfig returns the datalink defaults.
func DefaultConfig() Config { return datalink.DefaultConfig() }
