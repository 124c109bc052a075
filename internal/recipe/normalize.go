package recipe

import "strings"

// Normalize produces the canonical lookup key for an ingredient name:
// trim, lowercase, collapse internal whitespace. The same key is used for
// recipe ingredients, shopping-list dedup and inventory matching so that
// "Red Onion", "red onion" and "red  onion " are one item everywhere.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
