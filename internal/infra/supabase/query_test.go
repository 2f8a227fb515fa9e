package supabase

import (
	"strings"
	"testing"
)

func TestQuery_AllSentinelIsUnconstrained(t *testing.T) {
	// Every filter set to the "all" sentinel must encode the same request
	// as no filter at all.
	filtered := NewQuery("professionals").
		Eq("status", All).
		Eq("specialty", All).
		In("id", []string{All}).
		Encode()
	bare := NewQuery("professionals").Encode()

	if filtered != bare {
		t.Errorf("all-sentinel query %q differs from bare query %q", filtered, bare)
	}
	if bare != "professionals" {
		t.Errorf("bare query should be just the table, got %q", bare)
	}
}

func TestQuery_EmptyValuesAreOmitted(t *testing.T) {
	got := NewQuery("clients").
		Eq("status", "").
		Gte("created_at", "").
		Lte("created_at", "").
		Ilike("name", "").
		Encode()
	if got != "clients" {
		t.Errorf("empty filters should be omitted, got %q", got)
	}
}

func TestQuery_ConjunctivePredicates(t *testing.T) {
	got := NewQuery("transactions").
		Eq("kind", "income").
		Range("date", "2026-01-01", "2026-01-31").
		OrderBy("date", true).
		Page(2, 25).
		Encode()

	want := "transactions?kind=eq.income&date=gte.2026-01-01&date=lte.2026-01-31&order=date.desc&limit=25&offset=25"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestQuery_In(t *testing.T) {
	got := NewQuery("orders").In("status", []string{"open", "closed"}).Encode()
	want := "orders?status=in.(open,closed)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestQuery_SelectWithJoinedLabels(t *testing.T) {
	got := NewQuery("orders").
		Select("*,clients(name),professionals(name)").
		Eq("status", "open").
		Encode()

	if !strings.HasPrefix(got, "orders?select=") {
		t.Fatalf("expected select projection first, got %q", got)
	}
	if !strings.Contains(got, "status=eq.open") {
		t.Errorf("expected status predicate, got %q", got)
	}
}

func TestQuery_EscapesValues(t *testing.T) {
	got := NewQuery("clients").Eq("email", "ana+x@x.com").Encode()
	if strings.Contains(got, "ana+x@x.com") {
		t.Errorf("value should be escaped, got %q", got)
	}
	if !strings.Contains(got, "email=eq.") {
		t.Errorf("expected email predicate, got %q", got)
	}
}

func TestQuery_IlikeWrapsTerm(t *testing.T) {
	got := NewQuery("clients").Ilike("name", "ana").Encode()
	want := "clients?name=ilike." + "%2Aana%2A"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
