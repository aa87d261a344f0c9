package param

import "testing"

func TestSetParseAndSubstitute(t *testing.T) {
	s := Set{}
	if err := s.Parse("k1=2.5"); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := s.Substitute("rate = %k1:1.0 /sec")
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got != "rate = 2.5 /sec" {
		t.Fatalf("Substitute() = %q", got)
	}
}

func TestSubstituteFallsBackToDefaultWhenUnset(t *testing.T) {
	s := Set{}
	got, err := s.Substitute("rate = %missing:0.3 /sec")
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got != "rate = 0.3 /sec" {
		t.Fatalf("Substitute() = %q, want default value substituted silently", got)
	}
}

func TestSubstituteMalformedTokenErrors(t *testing.T) {
	s := Set{}
	if _, err := s.Substitute("rate = %k1 /sec"); err == nil {
		t.Fatal("Substitute() with no ':' in the token returned no error")
	}
}

func TestParseRejectsMissingEquals(t *testing.T) {
	s := Set{}
	if err := s.Parse("notkeyvalue"); err == nil {
		t.Fatal("Parse() with no '=' returned no error")
	}
}

func TestFloat(t *testing.T) {
	s := Set{"VI": "3.2e-15"}
	f, ok, err := s.Float("VI")
	if err != nil {
		t.Fatalf("Float() error = %v", err)
	}
	if !ok || f != 3.2e-15 {
		t.Fatalf("Float() = (%v, %v), want (3.2e-15, true)", f, ok)
	}
	if _, ok, _ := s.Float("missing"); ok {
		t.Fatal("Float() for an unset name returned ok=true")
	}
}
