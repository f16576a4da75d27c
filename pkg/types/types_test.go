package types

import "testing"

func TestSelectionKeyNormalizes(t *testing.T) {
	a := Selection{Size: " M ", Color: Color{Name: "Red", Hex: "#ff0000"}}
	b := Selection{Size: "m", Color: Color{Name: "red"}, Image: "other.jpg"}
	if a.Key("p1") != b.Key("p1") {
		t.Fatalf("expected keys to match: %+v vs %+v", a.Key("p1"), b.Key("p1"))
	}
	if a.Key("p1") == a.Key("p2") {
		t.Fatalf("different products must not share a key")
	}
}

func TestColorIsZero(t *testing.T) {
	if !(Color{}).IsZero() {
		t.Fatalf("empty color should be zero")
	}
	if (Color{Hex: "#000"}).IsZero() {
		t.Fatalf("hex-only color is a selection")
	}
}

func TestAddressNormalized(t *testing.T) {
	got := Address{FullName: " Asha ", Phone: "98765 43210"}.Normalized()
	if got.FullName != "Asha" || got.Phone != "9876543210" || got.Country != "India" {
		t.Fatalf("unexpected normalization %+v", got)
	}
}
