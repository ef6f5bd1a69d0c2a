package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface names the network interface to use, empty for all.
	Interface string
}

// Browser finds channel providers advertised on the local network.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates an mDNS browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// Browse streams providers as they are discovered, deduplicated by
// instance name with addresses from multiple interfaces merged. The
// channel is closed when ctx ends.
func (b *Browser) Browse(ctx context.Context) (<-chan *Provider, error) {
	out := make(chan *Provider)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		seen := make(map[string]*Provider)
		removals := removed
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				p := entryToProvider(entry)
				if p == nil {
					continue
				}
				if existing, found := seen[p.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, p.Addresses)
					continue
				}
				seen[p.InstanceName] = p
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removals:
				if !ok {
					removals = nil
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.options()...)
	}()

	return out, nil
}

// FindByScheme returns the first provider serving scheme, or ctx's error.
func (b *Browser) FindByScheme(ctx context.Context, scheme string) (*Provider, error) {
	providers, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for {
		select {
		case p, ok := <-providers:
			if !ok {
				return nil, ctx.Err()
			}
			if p.Scheme == scheme {
				return p, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *Browser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		if iface, err := net.InterfaceByName(b.config.Interface); err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// entryToProvider converts a zeroconf entry, nil if its TXT records do
// not describe a valid provider.
func entryToProvider(entry *zeroconf.ServiceEntry) *Provider {
	p, err := DecodeProviderTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	p.InstanceName = entry.Instance
	p.Host = entry.HostName
	p.Port = uint16(entry.Port)
	for _, ip := range entry.AddrIPv4 {
		p.Addresses = append(p.Addresses, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		p.Addresses = append(p.Addresses, ip.String())
	}
	return p
}

// mergeAddresses adds new addresses, skipping duplicates.
func mergeAddresses(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range more {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}
