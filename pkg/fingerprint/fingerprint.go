package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Unknown is the placeholder used for a signal no provider could read.
const Unknown = "unknown"

// ErrUnavailable is returned by a provider whose signal cannot be read.
var ErrUnavailable = errors.New("fingerprint.signal_unavailable")

// Provider produces one machine signal.
type Provider interface {
	Signal() (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() (string, error)

func (f ProviderFunc) Signal() (string, error) { return f() }

// Source is a named signal with its providers in priority order.
type Source struct {
	Name      string
	Providers []Provider
}

// Fingerprinter combines sources into a machine fingerprint.
type Fingerprinter struct {
	sources []Source
}

// New creates a Fingerprinter over the given sources. Source order is part of
// the fingerprint.
func New(sources ...Source) *Fingerprinter {
	return &Fingerprinter{sources: sources}
}

// Default returns the standard machine fingerprinter:
// os | network | cpu | disk.
func Default() *Fingerprinter {
	return New(
		Source{Name: "os", Providers: []Provider{Uname(), OSRelease(), RuntimeOS()}},
		Source{Name: "network", Providers: []Provider{HostnameWithAddr(), Hostname()}},
		Source{Name: "cpu", Providers: []Provider{CPUModel(), CPUCount()}},
		Source{Name: "disk", Providers: []Provider{DiskCapacity("/")}},
	)
}

// Signals resolves every source to its value, in source order.
func (f *Fingerprinter) Signals() []string {
	out := make([]string, 0, len(f.sources))
	for _, src := range f.sources {
		out = append(out, resolve(src.Providers))
	}
	return out
}

// Generate returns the hex SHA-256 of all signals joined with "|".
func (f *Fingerprinter) Generate() string {
	hash := sha256.Sum256([]byte(strings.Join(f.Signals(), "|")))
	return hex.EncodeToString(hash[:])
}

// resolve returns the first non-empty signal, or Unknown.
func resolve(providers []Provider) string {
	for _, p := range providers {
		if p == nil {
			continue
		}
		v, err := safeSignal(p)
		if err == nil && v != "" {
			return v
		}
	}
	return Unknown
}

// safeSignal shields the caller from a panicking provider.
func safeSignal(p Provider) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = "", ErrUnavailable
		}
	}()
	return p.Signal()
}
