// Package fingerprint derives a stable fingerprint for the machine the
// process runs on.
//
// A fingerprint is built from a fixed set of signals: operating system,
// network identity, CPU and disk capacity. Each signal is produced by an
// ordered list of providers. Providers are tried in order and the first one
// that returns a value wins; a signal with no working provider degrades to the
// constant "unknown". Signals are joined with "|" and hashed with SHA-256, so
// the result is always a 64-character hex string.
//
// Fingerprinting never fails. A container without /proc or a sandbox without
// network interfaces still gets a fingerprint, only a less distinctive one.
//
// # Usage
//
//	fp := fingerprint.Default().Generate()
//
// Custom signal sets:
//
//	f := fingerprint.New(
//	    fingerprint.Source{Name: "os", Providers: []fingerprint.Provider{fingerprint.RuntimeOS()}},
//	    fingerprint.Source{Name: "host", Providers: []fingerprint.Provider{fingerprint.Hostname()}},
//	)
//	fp := f.Generate()
package fingerprint
