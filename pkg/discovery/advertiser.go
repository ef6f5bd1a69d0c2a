package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface names the network interface to use, empty for all.
	Interface string

	// TTL is the DNS record TTL. Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		TTL: 120 * time.Second,
	}
}

// Advertiser registers channel providers on mDNS so browsers on the
// local network can find them.
type Advertiser struct {
	config AdvertiserConfig

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // keyed by instance name
}

// NewAdvertiser creates an mDNS advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}
}

// Advertise registers the provider. Re-advertising an instance name
// replaces the previous registration.
func (a *Advertiser) Advertise(p *Provider) error {
	if err := ValidateInstanceName(p.InstanceName); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if server, ok := a.servers[p.InstanceName]; ok {
		server.Shutdown()
		delete(a.servers, p.InstanceName)
	}

	port := int(p.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		p.InstanceName,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(EncodeProviderTXT(p)),
		a.interfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register provider %q: %w", p.InstanceName, err)
	}
	a.servers[p.InstanceName] = server
	return nil
}

// Stop withdraws one provider advertisement.
func (a *Advertiser) Stop(instanceName string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if server, ok := a.servers[instanceName]; ok {
		server.Shutdown()
		delete(a.servers, instanceName)
	}
}

// StopAll withdraws every advertisement.
func (a *Advertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, server := range a.servers {
		server.Shutdown()
		delete(a.servers, name)
	}
}

// interfaces returns the interfaces to advertise on, nil for all.
func (a *Advertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
