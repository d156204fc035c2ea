package identity

import "testing"

func TestKeyDeterministic(t *testing.T) {
	first := Key("menu_item", "Vanilla Sundae", "Sundae")
	for i := 0; i < 3; i++ {
		if got := Key("menu_item", "Vanilla Sundae", "Sundae"); got != first {
			t.Fatalf("Key not deterministic: %q vs %q", got, first)
		}
	}
	if first == "" {
		t.Fatal("expected non-empty key")
	}
}

func TestKeyCaseAndWhitespaceInsensitive(t *testing.T) {
	a := Key("menu_item", "Vanilla  Sundae", "Sundae")
	b := Key("menu_item", "  vanilla sundae ", "SUNDAE")
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
}

func TestKeyBlankPart(t *testing.T) {
	if got := Key("menu_item", "", "Sundae"); got != "" {
		t.Fatalf("expected empty key for blank part, got %q", got)
	}
	if got := Key(); got != "" {
		t.Fatalf("expected empty key for no parts, got %q", got)
	}
}

func TestKeysDifferByDomain(t *testing.T) {
	if MenuItemKey("cone", "Cone") == VariantKey("cone") {
		t.Fatal("menu item and variant keys should not collide")
	}
}

func TestCustomerKeyPriority(t *testing.T) {
	byPhone := CustomerKey("99887 76655", "Asha", "12 Lake Rd")
	if byPhone != CustomerKey("99887 76655", "", "") {
		t.Fatal("phone should dominate customer identity")
	}

	byNameAddress := CustomerKey("", "Asha", "12 Lake Rd")
	if byNameAddress != CustomerKey("", "asha", "12 lake rd") {
		t.Fatal("name+address identity should be case-insensitive")
	}
	if byPhone == byNameAddress {
		t.Fatal("phone and name+address identities should differ")
	}

	anonA := CustomerKey("", "", "")
	anonB := CustomerKey("", "", "")
	if anonA == anonB {
		t.Fatal("anonymous identities should be unique")
	}
}
