package driver

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/squill-app/squill-drivers/logger"
)

// UnknownSchemeError is returned by Open when no registered backend
// serves the URI scheme.
type UnknownSchemeError struct {
	Scheme string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("driver: no backend registered for scheme %q", e.Scheme)
}

// InvalidURIError is returned by Open when the URI cannot be parsed or
// carries no scheme.
type InvalidURIError struct {
	URI    string
	Reason string
}

func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("driver: invalid URI %q: %s", e.URI, e.Reason)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
)

// Register makes a backend available under each of its schemes. It is
// meant to be called from the backend's package init, once per process.
// Registering a scheme twice is a configuration error and panics.
func Register(d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, scheme := range d.Schemes() {
		scheme = strings.ToLower(scheme)
		if _, dup := registry[scheme]; dup {
			panic(fmt.Sprintf("driver: Register called twice for scheme %q", scheme))
		}
		registry[scheme] = d
		logger.Get().Debug("registered driver", "scheme", scheme)
	}
}

// Drivers returns the sorted list of registered schemes.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	schemes := make([]string, 0, len(registry))
	for scheme := range registry {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Open resolves the URI scheme to a registered backend and opens a
// connection through it.
func Open(uri string) (Conn, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &InvalidURIError{URI: uri, Reason: err.Error()}
	}
	if u.Scheme == "" {
		return nil, &InvalidURIError{URI: uri, Reason: "no scheme found"}
	}

	registryMu.RLock()
	d, ok := registry[strings.ToLower(u.Scheme)]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownSchemeError{Scheme: u.Scheme}
	}

	opts := OptionsFromURI(u)
	return d.Open(u, opts)
}
