package cache

import "testing"

func TestDedupe_Pass(t *testing.T) {
	type point struct {
		Name     string
		Lat, Lon float64
	}
	d := NewDedupe(2)
	a := point{"rye", 1, 2}
	b := point{"rye", 1, 3}
	c := point{"ia", 1, 2}

	if !d.Pass(a) {
		t.Fatal("first a should pass")
	}
	if d.Pass(a) {
		t.Fatal("second a should not pass")
	}
	if !d.Pass(b) || !d.Pass(c) {
		t.Fatal("b and c should pass")
	}
	// a was evicted.
	if !d.Pass(a) {
		t.Error("evicted a should pass again")
	}
	if d.Len() != 2 {
		t.Errorf("len = %d", d.Len())
	}
}
