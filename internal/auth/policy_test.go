package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenPolicyAllowsEveryone(t *testing.T) {
	p := NewPolicyService("", "")

	assert.True(t, p.IsAllowed("any-key"))
	assert.True(t, p.IsAllowed(""))
	assert.True(t, p.IsWriteAllowed("any-key"))
	assert.False(t, p.IsAdmin("any-key"))
}

func TestAllowedListRestrictsReads(t *testing.T) {
	p := NewPolicyService("", "reader-1, reader-2")

	assert.True(t, p.IsAllowed("reader-1"))
	assert.True(t, p.IsAllowed("reader-2"))
	assert.False(t, p.IsAllowed("stranger"))
	assert.False(t, p.IsAllowed(""))
}

func TestAdminKeysGateWrites(t *testing.T) {
	p := NewPolicyService("admin-1", "reader-1")

	assert.True(t, p.IsAdmin("admin-1"))
	assert.True(t, p.IsWriteAllowed("admin-1"))
	assert.False(t, p.IsWriteAllowed("reader-1"))

	// Admins read implicitly even when not in the allowed list.
	assert.True(t, p.IsAllowed("admin-1"))
}

func TestParseKeysTrimsWhitespace(t *testing.T) {
	p := NewPolicyService(" a , b ,, ", "")

	assert.True(t, p.IsAdmin("a"))
	assert.True(t, p.IsAdmin("b"))
	assert.False(t, p.IsAdmin(""))
}
