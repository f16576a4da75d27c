package env

import "testing"

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_VALUE", "   ")
	if got := Get("STOREFRONT_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("STOREFRONT_TEST_VALUE", "set")
	if got := Get("STOREFRONT_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_FLAG", "true")
	if !Bool("STOREFRONT_TEST_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("STOREFRONT_TEST_FLAG", "nope")
	if Bool("STOREFRONT_TEST_FLAG", false) {
		t.Fatalf("unparsable value should use fallback")
	}
}
