package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// mDNS service parameters for channel providers.
const (
	// ServiceType is the mDNS service type channel providers register.
	ServiceType = "_sigflow._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is used when a provider does not specify one.
	DefaultPort = 5075

	// MaxInstanceNameLen is the mDNS instance name limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyScheme  = "sch"
	TXTKeyPrefix  = "pfx"
	TXTKeyVersion = "ver"
	TXTKeyName    = "name"
)

// Discovery errors.
var (
	ErrMissingRequired     = errors.New("missing required field")
	ErrInvalidTXTRecord    = errors.New("invalid TXT record")
	ErrInstanceNameTooLong = errors.New("instance name too long")
)

// Provider describes one advertised channel provider: a transport scheme
// plus the pv prefix it serves, enough for a transport registry to route
// specs to it.
type Provider struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Scheme is the transport scheme the provider serves, like "ca".
	Scheme string

	// Prefix is the pv prefix the provider serves, empty for all.
	Prefix string

	// Version is the provider's protocol version string.
	Version string

	// Name is an optional human-readable name.
	Name string

	// Host, Port and Addresses are filled in by the browser.
	Host      string
	Port      uint16
	Addresses []string
}

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeProviderTXT creates TXT records for a provider advertisement.
func EncodeProviderTXT(p *Provider) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyScheme: p.Scheme,
	}
	if p.Prefix != "" {
		txt[TXTKeyPrefix] = p.Prefix
	}
	if p.Version != "" {
		txt[TXTKeyVersion] = p.Version
	}
	if p.Name != "" {
		txt[TXTKeyName] = p.Name
	}
	return txt
}

// DecodeProviderTXT parses TXT records from a provider advertisement.
func DecodeProviderTXT(txt TXTRecordMap) (*Provider, error) {
	scheme, ok := txt[TXTKeyScheme]
	if !ok || scheme == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyScheme)
	}
	if strings.Contains(scheme, "://") {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidTXTRecord, scheme)
	}
	return &Provider{
		Scheme:  scheme,
		Prefix:  txt[TXTKeyPrefix],
		Version: txt[TXTKeyVersion],
		Name:    txt[TXTKeyName],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings, the
// format mDNS libraries use.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	out := make([]string, 0, len(txt))
	for k, v := range txt {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		key, value, found := strings.Cut(s, "=")
		if key == "" {
			continue
		}
		if !found {
			value = ""
		}
		txt[key] = value
	}
	return txt
}

// ValidateInstanceName checks an mDNS instance name.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
