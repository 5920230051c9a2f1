package sqlite

import (
	"net/url"
	"testing"
)

func TestDSNFromURI(t *testing.T) {
	cases := []struct {
		uri  string
		want string
	}{
		{"mem://", ":memory:"},
		{"sqlite:///tmp/app.db", "/tmp/app.db"},
		{"sqlite://app.db", "app.db"},
		{"sqlite://data/app.db", "data/app.db"},
		{"sqlite:app.db", "app.db"},
		{"sqlite:///tmp/app.db?mode=ro", "/tmp/app.db?mode=ro"},
	}
	for _, c := range cases {
		u, err := url.Parse(c.uri)
		if err != nil {
			t.Fatalf("Failed to parse %q: %v", c.uri, err)
		}
		if got := dsnFromURI(u); got != c.want {
			t.Errorf("%s: expected %q, got %q", c.uri, c.want, got)
		}
	}
}
