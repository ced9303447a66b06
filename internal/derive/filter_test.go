package derive

import (
	"reflect"
	"testing"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/enum"
)

func sampleClients() []crm.Client {
	return []crm.Client{
		{ID: 1, CompanyName: "Acme Corporation", ContactName: "Jane Doe", Email: "jane@acme.example"},
		{ID: 2, CompanyName: "Globex Inc", ContactName: "Hank Scorpio", Email: "hank@globex.example"},
		{ID: 3, CompanyName: "Initech", ContactName: "Bill Lumbergh", Email: "bill@initech.example"},
	}
}

func clientFields() []func(crm.Client) string {
	return []func(crm.Client) string{
		func(c crm.Client) string { return c.CompanyName },
		func(c crm.Client) string { return c.ContactName },
		func(c crm.Client) string { return c.Email },
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	got := Search(sampleClients(), "acme", clientFields()...)

	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("search %q: got %v, want client 1 only", "acme", got)
	}
}

func TestSearch_MatchesAnyField(t *testing.T) {
	// "bill" appears only in contact name and email, not company name.
	got := Search(sampleClients(), "BILL", clientFields()...)

	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("search %q: got %v, want client 3 only", "BILL", got)
	}
}

func TestSearch_EmptyQueryIsIdentity(t *testing.T) {
	clients := sampleClients()

	for _, q := range []string{"", "   ", "\t"} {
		got := Search(clients, q, clientFields()...)
		if !reflect.DeepEqual(got, clients) {
			t.Errorf("search %q: got %v, want input unchanged", q, got)
		}
	}
}

func TestSearch_NoMatches(t *testing.T) {
	got := Search(sampleClients(), "zzz-no-such", clientFields()...)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestSearch_InputNotMutated(t *testing.T) {
	clients := sampleClients()
	Search(clients, "acme", clientFields()...)

	if !reflect.DeepEqual(clients, sampleClients()) {
		t.Error("input slice was mutated")
	}
}

func TestMatchField_Exact(t *testing.T) {
	orders := []crm.Order{
		{ID: 1, Status: enum.OrderStatusNew},
		{ID: 2, Status: enum.OrderStatusCompleted},
		{ID: 3, Status: enum.OrderStatusNew},
	}

	got := MatchField(orders, enum.OrderStatusNew, enum.StatusAll,
		func(o crm.Order) string { return o.Status })

	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("match %q: got %v, want orders 1 and 3", enum.OrderStatusNew, got)
	}
}

func TestMatchField_CaseSensitive(t *testing.T) {
	orders := []crm.Order{{ID: 1, Status: enum.OrderStatusNew}}

	got := MatchField(orders, "new", enum.StatusAll,
		func(o crm.Order) string { return o.Status })

	if len(got) != 0 {
		t.Errorf("match is exact, %q must not match %q", "new", enum.OrderStatusNew)
	}
}

func TestMatchField_SentinelDisablesFilter(t *testing.T) {
	orders := []crm.Order{
		{ID: 1, Status: enum.OrderStatusNew},
		{ID: 2, Status: enum.OrderStatusCancelled},
	}

	for _, want := range []string{"", enum.StatusAll} {
		got := MatchField(orders, want, enum.StatusAll,
			func(o crm.Order) string { return o.Status })
		if !reflect.DeepEqual(got, orders) {
			t.Errorf("want=%q: got %v, want input unchanged", want, got)
		}
	}
}
