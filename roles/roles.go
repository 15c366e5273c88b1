package roles

import "fmt"

// Role is a power-of-two flag stored bitwise-OR'd in site_users.roles_mask.
// The numeric values are a fixed wire contract shared with the dashboard
// frontend and must never be renumbered.
type Role int64

const (
	AdSettings              Role = 1
	Reporting               Role = 2
	Video                   Role = 4
	Payment                 Role = 8
	Owner                   Role = 16
	PostTerminationNewOwner Role = 32
)

// All lists every known role in declaration order. RolesFromMask follows this
// order, not the numeric one.
var All = []Role{
	AdSettings,
	Reporting,
	Video,
	Payment,
	Owner,
	PostTerminationNewOwner,
}

var names = map[Role]string{
	AdSettings:              "ad_settings",
	Reporting:               "reporting",
	Video:                   "video",
	Payment:                 "payment",
	Owner:                   "owner",
	PostTerminationNewOwner: "post_termination_new_owner",
}

func (r Role) String() string {
	if n, ok := names[r]; ok {
		return n
	}

	return "unknown"
}

// HasAnyRole reports whether the mask carries at least one of the given
// roles. An empty role list is vacuously true, it expresses "site member,
// any role". A zero mask carries nothing.
func HasAnyRole(mask int64, list []Role) bool {
	if len(list) < 1 {
		return true
	}

	for _, r := range list {
		if mask&int64(r) == int64(r) {
			return true
		}
	}

	return false
}

// HasAllRoles reports whether the mask carries every given role.
func HasAllRoles(mask int64, list []Role) bool {
	for _, r := range list {
		if mask&int64(r) != int64(r) {
			return false
		}
	}

	return true
}

// MaskFromRoles folds the roles into a single bitmask.
func MaskFromRoles(list []Role) int64 {
	mask := int64(0)

	for _, r := range list {
		mask |= int64(r)
	}

	return mask
}

// RolesFromMask expands a mask into the known roles it carries, in
// declaration order.
func RolesFromMask(mask int64) []Role {
	list := []Role{}

	for _, r := range All {
		if mask&int64(r) == int64(r) {
			list = append(list, r)
		}
	}

	return list
}

// FromNames parses wire names back into roles. Unknown names fail the whole
// list, a silent drop would grant less than the caller asked for.
func FromNames(list []string) ([]Role, error) {
	out := []Role{}

	for _, name := range list {
		found := false

		for _, r := range All {
			if r.String() == name {
				out = append(out, r)
				found = true
				break
			}
		}

		if !found {
			return nil, fmt.Errorf("unknown role %q", name)
		}
	}

	return out, nil
}

// Names renders a role list for claims and API payloads.
func Names(list []Role) []string {
	names := []string{}

	for _, r := range list {
		names = append(names, r.String())
	}

	return names
}
