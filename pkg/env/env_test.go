package env

import "testing"

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("INVENTORY_TEST_VALUE", "  ")
	if got := Get("INVENTORY_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("INVENTORY_TEST_VALUE", "set")
	if got := Get("INVENTORY_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("INVENTORY_TEST_FLAG", "true")
	if !Bool("INVENTORY_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("INVENTORY_TEST_FLAG", "nope")
	if Bool("INVENTORY_TEST_FLAG", false) {
		t.Fatal("malformed value should fall back")
	}
}
