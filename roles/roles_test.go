package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name string
		mask int64
		list []Role
		want bool
	}{
		{"empty list is vacuously true", 0, []Role{}, true},
		{"empty list with populated mask", int64(Owner | Payment), []Role{}, true},
		{"single matching role", int64(Owner), []Role{Owner}, true},
		{"single missing role", int64(Reporting), []Role{Owner}, false},
		{"one of many matches", int64(Video), []Role{Owner, Video}, true},
		{"none of many matches", int64(AdSettings), []Role{Owner, Payment}, false},
		{"zero mask never matches", 0, []Role{AdSettings}, false},
		{"combined mask matches member flag", int64(Owner | Reporting), []Role{Reporting}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAnyRole(tt.mask, tt.list))
		})
	}
}

func TestHasAllRoles(t *testing.T) {
	mask := MaskFromRoles([]Role{Owner, Payment, Video})

	assert.True(t, HasAllRoles(mask, []Role{Owner, Payment}))
	assert.True(t, HasAllRoles(mask, []Role{}))
	assert.False(t, HasAllRoles(mask, []Role{Owner, Reporting}))
	assert.False(t, HasAllRoles(0, []Role{AdSettings}))
}

func TestMaskFromRoles(t *testing.T) {
	assert.Equal(t, int64(0), MaskFromRoles(nil))
	assert.Equal(t, int64(17), MaskFromRoles([]Role{AdSettings, Owner}))
	assert.Equal(t, int64(17), MaskFromRoles([]Role{Owner, AdSettings, Owner}))
}

func TestRolesFromMaskDeclarationOrder(t *testing.T) {
	got := RolesFromMask(int64(PostTerminationNewOwner | AdSettings | Payment))

	assert.Equal(t, []Role{AdSettings, Payment, PostTerminationNewOwner}, got)
}

func TestMaskRoundTrip(t *testing.T) {
	for mask := int64(0); mask < 64; mask++ {
		assert.Equal(t, mask, MaskFromRoles(RolesFromMask(mask)), "mask %d", mask)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t,
		[]string{"owner", "post_termination_new_owner"},
		Names(RolesFromMask(int64(Owner|PostTerminationNewOwner))),
	)
}

func TestFromNames(t *testing.T) {
	got, err := FromNames([]string{"owner", "reporting"})

	assert.NoError(t, err)
	assert.Equal(t, []Role{Owner, Reporting}, got)
}

func TestFromNamesUnknown(t *testing.T) {
	got, err := FromNames([]string{"owner", "superuser"})

	assert.Error(t, err)
	assert.Nil(t, got)
}
