package driver

import (
	"errors"
	"net/url"
	"testing"
)

type fakeDriver struct {
	schemes []string
	opened  []*url.URL
	opts    []Options
}

func (d *fakeDriver) Schemes() []string { return d.schemes }

func (d *fakeDriver) Open(uri *url.URL, opts Options) (Conn, error) {
	d.opened = append(d.opened, uri)
	d.opts = append(d.opts, opts)
	return nil, errors.New("fake: not a real backend")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(&fakeDriver{schemes: []string{"regdup"}})
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	Register(&fakeDriver{schemes: []string{"REGDUP"}})
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("nosuchscheme://whatever")
	var unknown *UnknownSchemeError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownSchemeError, got %v", err)
	}
	if unknown.Scheme != "nosuchscheme" {
		t.Errorf("Expected scheme nosuchscheme, got %q", unknown.Scheme)
	}
}

func TestOpenInvalidURI(t *testing.T) {
	var invalid *InvalidURIError
	if _, err := Open("no-scheme-at-all"); !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidURIError, got %v", err)
	}
	if _, err := Open("://"); !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidURIError, got %v", err)
	}
}

func TestOpenCaseInsensitiveScheme(t *testing.T) {
	fake := &fakeDriver{schemes: []string{"regcase"}}
	Register(fake)
	_, _ = Open("RegCase://db")
	if len(fake.opened) != 1 {
		t.Fatalf("Expected 1 open call, got %d", len(fake.opened))
	}
}

func TestOptionsFromURI(t *testing.T) {
	fake := &fakeDriver{schemes: []string{"regopts"}}
	Register(fake)
	_, _ = Open("regopts://db?batch_rows=250&keep=1")
	if len(fake.opts) != 1 {
		t.Fatalf("Expected 1 open call, got %d", len(fake.opts))
	}
	if fake.opts[0].MaxBatchRows != 250 {
		t.Errorf("Expected batch size 250, got %d", fake.opts[0].MaxBatchRows)
	}
	// batch_rows is consumed; backend-specific parameters survive.
	q := fake.opened[0].Query()
	if q.Has("batch_rows") {
		t.Error("Expected batch_rows to be stripped from the URI")
	}
	if q.Get("keep") != "1" {
		t.Error("Expected backend parameter to survive")
	}
}
