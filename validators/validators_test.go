package validators

import (
	"testing"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	u, err := uuid.FromString(s)
	if err != nil {
		t.Fatalf("bad uuid fixture %q: %v", s, err)
	}
	return u
}

func TestIsETHAddress(t *testing.T) {
	assert.True(t, IsETHAddress("0x52bc44d5378309ee2abf1539bf71de1b7d7be3b5"))
	assert.False(t, IsETHAddress("52bc44d5378309ee2abf1539bf71de1b7d7be3b5"))
	assert.False(t, IsETHAddress("0x52bc44d5378309ee2abf1539bf71de1b7d7be3"))
}

func TestIsBTCAddress(t *testing.T) {
	assert.True(t, IsBTCAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
	assert.False(t, IsBTCAddress("4A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
	assert.False(t, IsBTCAddress("not-an-address"))
}

func TestIsDecimalAmount(t *testing.T) {
	assert.True(t, IsDecimalAmount("100.00"))
	assert.True(t, IsDecimalAmount("5"))
	assert.False(t, IsDecimalAmount("-1"))
	assert.False(t, IsDecimalAmount("1,00"))
}

func TestIsRequiredUUID(t *testing.T) {
	assert.True(t, IsRequiredUUID(mustUUID(t, "5c86e46c-6d9c-435d-85e3-bc1b9e9d986e"), nil))
	assert.False(t, IsRequiredUUID(mustUUID(t, "00000000-0000-0000-0000-000000000000"), nil))
}
