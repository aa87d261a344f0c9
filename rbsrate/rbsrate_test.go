package rbsrate

import "testing"

func TestEstimateStrongerSiteGetsHigherRate(t *testing.T) {
	weak, err := Estimate("GGGGGGGGGGGGGG")
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	strong, err := Estimate("AAAGGAGGTTTAAA") // contains a near-exact aSD complement
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if strong <= weak {
		t.Fatalf("strong rate %v should exceed weak rate %v", strong, weak)
	}
}

func TestEstimateRejectsNonDNA(t *testing.T) {
	if _, err := Estimate("ACGU"); err == nil {
		t.Fatal("Estimate() on an RNA sequence returned no error")
	}
}

func TestEstimateRejectsEmpty(t *testing.T) {
	if _, err := Estimate(""); err == nil {
		t.Fatal("Estimate() on an empty sequence returned no error")
	}
}

func TestSyntheticProducesDNA(t *testing.T) {
	seq, err := Synthetic(20, 42)
	if err != nil {
		t.Fatalf("Synthetic() error = %v", err)
	}
	if len(seq) != 20 {
		t.Fatalf("len(seq) = %d, want 20", len(seq))
	}
	if _, err := Estimate(seq); err != nil {
		t.Fatalf("Estimate() on synthetic sequence error = %v", err)
	}
}
