package types

import "testing"

func TestSelectionEqual(t *testing.T) {
	a := Selection{"Size": "m", "Color": "red"}
	b := Selection{"Color": "red", "Size": "m"}
	if !a.Equal(b) {
		t.Fatal("expected equal selections")
	}
	if a.Equal(Selection{"Size": "m"}) {
		t.Fatal("different key counts must not be equal")
	}
	if a.Equal(Selection{"Size": "l", "Color": "red"}) {
		t.Fatal("different values must not be equal")
	}
}

func TestSelectionContains(t *testing.T) {
	sel := Selection{"Size": "m", "Color": "red"}
	if !sel.Contains(Selection{"Color": "red"}) {
		t.Fatal("expected subset to match")
	}
	if sel.Contains(Selection{"Color": "blue"}) {
		t.Fatal("mismatched value must not match")
	}
	if !sel.Contains(Selection{}) {
		t.Fatal("empty subset always matches")
	}
}

func TestSelectionClone(t *testing.T) {
	sel := Selection{"Size": "m"}
	clone := sel.Clone()
	clone["Size"] = "l"
	if sel["Size"] != "m" {
		t.Fatal("clone must not alias the original")
	}
	if Selection(nil).Clone() != nil {
		t.Fatal("nil clone should stay nil")
	}
}
