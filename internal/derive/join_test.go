package derive

import (
	"testing"

	"github.com/clientiq-crm/bff/internal/crm"
)

func TestResolveClientName(t *testing.T) {
	clients := []crm.Client{
		{ID: 1, CompanyName: "Acme Corporation"},
		{ID: 2, CompanyName: "Globex Inc"},
	}

	if got := ResolveClientName(2, clients); got != "Globex Inc" {
		t.Errorf("got %q, want %q", got, "Globex Inc")
	}
}

func TestResolveClientName_Missing(t *testing.T) {
	clients := []crm.Client{{ID: 1, CompanyName: "Acme Corporation"}}

	if got := ResolveClientName(999, clients); got != UnknownClient {
		t.Errorf("got %q, want %q", got, UnknownClient)
	}
}

func TestResolveClientName_EmptySnapshot(t *testing.T) {
	if got := ResolveClientName(1, nil); got != UnknownClient {
		t.Errorf("got %q, want %q", got, UnknownClient)
	}
}
