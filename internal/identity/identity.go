package identity

import (
	"strings"

	"github.com/google/uuid"
)

// appNamespace is the fixed UUIDv5 namespace for all catalog identities.
// Changing it would change every entity ID in every deployment.
var appNamespace = uuid.MustParse("8f3c9d2a-54b1-5e76-9a10-c2f4d8e6b301")

// Key computes the content-addressable ID for the given attribute parts.
// Parts are lowercased and whitespace-collapsed before hashing, then joined
// with ":". Returns "" if any part is blank, since an identity derived from
// missing attributes would collide across unrelated entities.
func Key(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	normalized := make([]string, len(parts))
	for i, part := range parts {
		cleaned := canonicalizePart(part)
		if cleaned == "" {
			return ""
		}
		normalized[i] = cleaned
	}
	return uuid.NewSHA1(appNamespace, []byte(strings.Join(normalized, ":"))).String()
}

// MenuItemKey derives the canonical ID for a menu item from its normalized
// name and type.
func MenuItemKey(name, itemType string) string {
	return Key("menu_item", name, itemType)
}

// VariantKey derives the canonical ID for a variant from its token.
func VariantKey(token string) string {
	return Key("variant", token)
}

// CustomerKey resolves a customer identity by priority: phone number, then
// name plus address, then a freshly minted anonymous ID. Only the anonymous
// fallback is non-deterministic.
func CustomerKey(phone, name, address string) string {
	if canonicalizePart(phone) != "" {
		return Key("customer", phone)
	}
	if canonicalizePart(name) != "" && canonicalizePart(address) != "" {
		return Key("customer", name, address)
	}
	return uuid.New().String()
}

func canonicalizePart(part string) string {
	return strings.ToLower(strings.Join(strings.Fields(part), " "))
}
