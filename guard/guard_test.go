package guard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pubforge.dev/publisher-api/apperr"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/roles"
)

type fakeLookup struct {
	siteUsers map[string]*models.SiteUser
	sites     map[uuid.UUID]*models.Site
	videos    map[string]uuid.UUID
	lookups   int
}

func key(userID uuid.UUID, siteID uuid.UUID) string {
	return userID.String() + "/" + siteID.String()
}

func (f *fakeLookup) FindSiteUser(_ context.Context, userID uuid.UUID, siteID uuid.UUID) (*models.SiteUser, error) {
	f.lookups++

	return f.siteUsers[key(userID, siteID)], nil
}

func (f *fakeLookup) FindSite(_ context.Context, siteID uuid.UUID) (*models.Site, error) {
	f.lookups++

	return f.sites[siteID], nil
}

func (f *fakeLookup) FindVideoSiteID(_ context.Context, slug string) (uuid.UUID, error) {
	f.lookups++

	return f.videos[slug], nil
}

type fixture struct {
	guard  *Guard
	lookup *fakeLookup
	siteID uuid.UUID
	userID uuid.UUID
}

func newFixture(mask int64) *fixture {
	siteID := uuid.New()
	userID := uuid.New()

	lookup := &fakeLookup{
		siteUsers: map[string]*models.SiteUser{},
		sites:     map[uuid.UUID]*models.Site{siteID: {ID: siteID}},
		videos:    map[string]uuid.UUID{},
	}

	if mask >= 0 {
		lookup.siteUsers[key(userID, siteID)] = &models.SiteUser{
			SiteID:    siteID,
			UserID:    userID,
			RolesMask: mask,
		}
	}

	return &fixture{guard: New(lookup), lookup: lookup, siteID: siteID, userID: userID}
}

func (f *fixture) actor() *Actor {
	return &Actor{ID: f.userID}
}

func TestNilActorShortCircuits(t *testing.T) {
	f := newFixture(int64(roles.Owner))
	ctx := context.Background()

	_, err := f.guard.AssertCanAccessSite(ctx, nil, f.siteID)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = f.guard.AssertCanManagePayees(ctx, nil, f.siteID)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = f.guard.AssertCanAccessVideos(ctx, nil, f.siteID, "")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// No lookup may run before the authentication check.
	assert.Zero(t, f.lookup.lookups)
}

func TestAdminBypassesMembership(t *testing.T) {
	f := newFixture(-1)
	admin := &Actor{ID: uuid.New(), IsAdmin: true}
	ctx := context.Background()

	dec, err := f.guard.AssertCanAccessSite(ctx, admin, f.siteID)
	require.NoError(t, err)
	assert.True(t, dec.ShowReportData)
	assert.True(t, dec.Admin)

	_, err = f.guard.AssertCanManageSiteUsers(ctx, admin, f.siteID)
	assert.NoError(t, err)
	assert.Zero(t, f.lookup.lookups)
}

func TestAccessSiteDegradesForNonMembers(t *testing.T) {
	f := newFixture(-1)

	dec, err := f.guard.AssertCanAccessSite(context.Background(), f.actor(), f.siteID)

	require.NoError(t, err)
	assert.False(t, dec.ShowReportData)
}

func TestAccessSiteReportRoles(t *testing.T) {
	tests := []struct {
		name string
		mask int64
		want bool
	}{
		{"owner", int64(roles.Owner), true},
		{"reporting", int64(roles.Reporting), true},
		{"post termination new owner", int64(roles.PostTerminationNewOwner), true},
		{"video only", int64(roles.Video), false},
		{"zero mask member", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.mask)

			dec, err := f.guard.AssertCanAccessSite(context.Background(), f.actor(), f.siteID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, dec.ShowReportData)
		})
	}
}

func TestManageCapabilitiesRoleSets(t *testing.T) {
	ctx := context.Background()

	type check func(*fixture) error

	settings := func(f *fixture) error {
		_, err := f.guard.AssertCanManageSiteSettings(ctx, f.actor(), f.siteID)
		return err
	}
	payees := func(f *fixture) error {
		_, err := f.guard.AssertCanManagePayees(ctx, f.actor(), f.siteID)
		return err
	}
	siteUsers := func(f *fixture) error {
		_, err := f.guard.AssertCanManageSiteUsers(ctx, f.actor(), f.siteID)
		return err
	}
	videos := func(f *fixture) error {
		_, err := f.guard.AssertCanAccessVideos(ctx, f.actor(), f.siteID, "")
		return err
	}

	tests := []struct {
		name    string
		mask    int64
		assert  check
		allowed bool
	}{
		{"settings via ad_settings", int64(roles.AdSettings), settings, true},
		{"settings via owner", int64(roles.Owner), settings, true},
		{"settings denied for reporting", int64(roles.Reporting), settings, false},
		{"payees via payment", int64(roles.Payment), payees, true},
		{"payees denied for ad_settings", int64(roles.AdSettings), payees, false},
		{"site users owner only", int64(roles.Owner), siteUsers, true},
		{"site users denied for payment", int64(roles.Payment), siteUsers, false},
		{"videos via video role", int64(roles.Video), videos, true},
		{"videos denied for reporting", int64(roles.Reporting), videos, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.assert(newFixture(tt.mask))

			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
			}
		})
	}
}

func TestNonMemberStatusOrdering(t *testing.T) {
	// Site exists, caller has no membership: Unauthorized.
	f := newFixture(-1)
	_, err := f.guard.AssertCanManageSiteSettings(context.Background(), f.actor(), f.siteID)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// Site does not exist at all: NotFound.
	_, err = f.guard.AssertCanManageSiteSettings(context.Background(), f.actor(), uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAccessVideosBySlug(t *testing.T) {
	f := newFixture(int64(roles.Video))
	otherSite := uuid.New()
	f.lookup.sites[otherSite] = &models.Site{ID: otherSite}
	f.lookup.videos["my-video"] = f.siteID
	f.lookup.videos["foreign-video"] = otherSite

	// Slug resolves to the caller's site: allowed.
	_, err := f.guard.AssertCanAccessVideos(context.Background(), f.actor(), uuid.New(), "my-video")
	assert.NoError(t, err)

	// Slug owned by a site the caller has no access to: denied against the
	// real owner, not the passed site id.
	_, err = f.guard.AssertCanAccessVideos(context.Background(), f.actor(), f.siteID, "foreign-video")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// Unknown slug: NotFound.
	_, err = f.guard.AssertCanAccessVideos(context.Background(), f.actor(), f.siteID, "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAssertIsAdmin(t *testing.T) {
	g := New(&fakeLookup{})

	_, err := g.AssertIsAdmin(&Actor{ID: uuid.New()})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = g.AssertIsAdmin(nil)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	dec, err := g.AssertIsAdmin(&Actor{ID: uuid.New(), IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, dec.Admin)
}
