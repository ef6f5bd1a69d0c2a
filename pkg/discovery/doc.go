// Package discovery advertises and browses channel providers over mDNS.
//
// A provider is a process serving channels for one transport scheme,
// optionally restricted to a pv prefix. Providers register the
// "_sigflow._tcp" service with their scheme and prefix in TXT records;
// browsers stream discovered providers so an application can decide which
// transports to register.
//
// Discovery is purely additive: the signal and device layers never depend
// on it.
package discovery
