// Package clover speaks the Clover POS wire formats: webhook object ids,
// delivery signatures, and the read-only order/line-item REST API.
package clover

import "strings"

// EntityType is the semantic category a webhook object id points at
type EntityType string

const (
	EntityOrder             EntityType = "order"
	EntityInventoryItem     EntityType = "inventory_item"
	EntityPayment           EntityType = "payment"
	EntityCustomer          EntityType = "customer"
	EntityEmployee          EntityType = "employee"
	EntityApp               EntityType = "app"
	EntityMerchant          EntityType = "merchant"
	EntityInventoryCategory EntityType = "inventory_category"
	EntityModifierGroup     EntityType = "inventory_modifier_group"
	EntityModifier          EntityType = "inventory_modifier"
	EntityCashAdjustment    EntityType = "cash_adjustment"
	EntityServiceHours      EntityType = "service_hours"
	EntityUnknown           EntityType = "unknown"
)

type typeCode struct {
	code   string
	entity EntityType
}

// Two-character codes must be tried before one-character codes: "IC:x" would
// otherwise decode as inventory item "C:x".
var typeCodes = []typeCode{
	{"CA", EntityCashAdjustment},
	{"IC", EntityInventoryCategory},
	{"IG", EntityModifierGroup},
	{"IM", EntityModifier},
	{"SH", EntityServiceHours},
	{"A", EntityApp},
	{"C", EntityCustomer},
	{"E", EntityEmployee},
	{"I", EntityInventoryItem},
	{"M", EntityMerchant},
	{"O", EntityOrder},
	{"P", EntityPayment},
}

// DecodeObjectID parses a compact "<TypeCode>:<EntityId>" identifier.
// Malformed identifiers decode to EntityUnknown with the whole string as the
// id; callers route those to the logged-for-analysis path instead of failing.
func DecodeObjectID(objectID string) (EntityType, string) {
	for _, tc := range typeCodes {
		if strings.HasPrefix(objectID, tc.code+":") {
			return tc.entity, objectID[len(tc.code)+1:]
		}
	}

	if idx := strings.Index(objectID, ":"); idx > 0 && idx <= 2 && isUpperAlpha(objectID[:idx]) && idx < len(objectID)-1 {
		// well-formed grammar, unrecognized code
		return EntityUnknown, objectID[idx+1:]
	}

	return EntityUnknown, objectID
}

func isUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
