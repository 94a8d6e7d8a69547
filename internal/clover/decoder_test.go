package clover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeObjectID(t *testing.T) {
	tests := []struct {
		objectID   string
		wantType   EntityType
		wantEntity string
	}{
		{"O:ABC123", EntityOrder, "ABC123"},
		{"I:XYZ", EntityInventoryItem, "XYZ"},
		{"P:PAY42", EntityPayment, "PAY42"},
		{"C:CUST1", EntityCustomer, "CUST1"},
		{"E:EMP7", EntityEmployee, "EMP7"},
		{"A:APP1", EntityApp, "APP1"},
		{"M:MERCH", EntityMerchant, "MERCH"},
		{"CA:ADJ1", EntityCashAdjustment, "ADJ1"},
		{"IC:CAT9", EntityInventoryCategory, "CAT9"},
		{"IG:GRP2", EntityModifierGroup, "GRP2"},
		{"IM:MOD3", EntityModifier, "MOD3"},
		{"SH:HRS1", EntityServiceHours, "HRS1"},
	}

	for _, tt := range tests {
		t.Run(tt.objectID, func(t *testing.T) {
			gotType, gotID := DecodeObjectID(tt.objectID)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantEntity, gotID)
		})
	}
}

// Two-character codes share a leading character with one-character codes;
// "IC:x" must never decode as inventory item "C:x".
func TestDecodeObjectIDLongestPrefixWins(t *testing.T) {
	gotType, gotID := DecodeObjectID("IC:ABC")
	assert.Equal(t, EntityInventoryCategory, gotType)
	assert.Equal(t, "ABC", gotID)

	gotType, gotID = DecodeObjectID("IM:DEF")
	assert.Equal(t, EntityModifier, gotType)
	assert.Equal(t, "DEF", gotID)

	gotType, gotID = DecodeObjectID("I:GHI")
	assert.Equal(t, EntityInventoryItem, gotType)
	assert.Equal(t, "GHI", gotID)
}

func TestDecodeObjectIDMalformed(t *testing.T) {
	gotType, gotID := DecodeObjectID("no-separator-here")
	assert.Equal(t, EntityUnknown, gotType)
	assert.Equal(t, "no-separator-here", gotID)

	// unrecognized but well-formed code keeps the entity id
	gotType, gotID = DecodeObjectID("Z:123")
	assert.Equal(t, EntityUnknown, gotType)
	assert.Equal(t, "123", gotID)

	gotType, gotID = DecodeObjectID("")
	assert.Equal(t, EntityUnknown, gotType)
	assert.Equal(t, "", gotID)
}

func TestDecodeObjectIDIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		gotType, gotID := DecodeObjectID("O:REPEAT")
		assert.Equal(t, EntityOrder, gotType)
		assert.Equal(t, "REPEAT", gotID)
	}
}
