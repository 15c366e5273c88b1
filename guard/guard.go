package guard

import (
	"context"

	"github.com/google/uuid"
	"pubforge.dev/publisher-api/apperr"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/roles"
)

// Actor is the authenticated caller, passed explicitly to every check. A nil
// actor means the request carried no usable identity and every assert fails
// with Unauthorized before touching storage.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

// SiteUserLookup is the storage collaborator for membership checks.
// Implementations return nil without an error when the record is absent.
type SiteUserLookup interface {
	FindSiteUser(ctx context.Context, userID uuid.UUID, siteID uuid.UUID) (*models.SiteUser, error)
	FindSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error)
	// FindVideoSiteID resolves the owning site of a video slug, uuid.Nil
	// when no such video exists.
	FindVideoSiteID(ctx context.Context, slug string) (uuid.UUID, error)
}

// Decision is the record that a permission check ran and what it granted.
// Every private route must produce one (or an explicit opt-out); the routing
// layer enforces that.
type Decision struct {
	Capability     string           `json:"capability"`
	Admin          bool             `json:"admin"`
	SiteUser       *models.SiteUser `json:"-"`
	ShowReportData bool             `json:"show_report_data"`
}

type Guard struct {
	lookup SiteUserLookup
}

func New(lookup SiteUserLookup) *Guard {
	return &Guard{lookup: lookup}
}

var (
	reportRoles       = []roles.Role{roles.Owner, roles.Reporting, roles.PostTerminationNewOwner}
	siteSettingsRoles = []roles.Role{roles.Owner, roles.AdSettings}
	payeeRoles        = []roles.Role{roles.Owner, roles.Payment}
	siteUserRoles     = []roles.Role{roles.Owner}
	videoRoles        = []roles.Role{roles.Owner, roles.Video}
)

// AssertCanAccessSite resolves for any authenticated caller; a non-member
// (or a member with no reporting-grade role) simply gets
// ShowReportData=false instead of an error. Other asserts are stricter on
// purpose, this asymmetry is load-bearing for the settings read path.
func (g *Guard) AssertCanAccessSite(ctx context.Context, actor *Actor, siteID uuid.UUID) (Decision, error) {
	if actor == nil {
		return Decision{}, apperr.Unauthorized("You are not authenticated.")
	}

	dec := Decision{Capability: "access_site"}

	if actor.IsAdmin {
		dec.Admin = true
		dec.ShowReportData = true

		return dec, nil
	}

	su, err := g.lookup.FindSiteUser(ctx, actor.ID, siteID)
	if err != nil {
		return Decision{}, err
	}

	if su != nil {
		dec.SiteUser = su
		dec.ShowReportData = roles.HasAnyRole(su.RolesMask, reportRoles)
	}

	return dec, nil
}

func (g *Guard) AssertCanManageSiteSettings(ctx context.Context, actor *Actor, siteID uuid.UUID) (Decision, error) {
	return g.assertAnyRole(ctx, actor, siteID, "manage_site_settings", siteSettingsRoles)
}

func (g *Guard) AssertCanManagePayees(ctx context.Context, actor *Actor, siteID uuid.UUID) (Decision, error) {
	return g.assertAnyRole(ctx, actor, siteID, "manage_payees", payeeRoles)
}

func (g *Guard) AssertCanManageSiteUsers(ctx context.Context, actor *Actor, siteID uuid.UUID) (Decision, error) {
	return g.assertAnyRole(ctx, actor, siteID, "manage_site_users", siteUserRoles)
}

// AssertCanAccessVideos checks against the passed site, unless a slug is
// given, in which case the video's owning site wins. Cross-site slugs single
// out as NotFound upstream instead of silently authorizing against the wrong
// site.
func (g *Guard) AssertCanAccessVideos(ctx context.Context, actor *Actor, siteID uuid.UUID, slug string) (Decision, error) {
	if actor == nil {
		return Decision{}, apperr.Unauthorized("You are not authenticated.")
	}

	if len(slug) > 0 {
		owner, err := g.lookup.FindVideoSiteID(ctx, slug)
		if err != nil {
			return Decision{}, err
		}

		if owner == uuid.Nil {
			return Decision{}, apperr.NotFound("The video could not be found.")
		}

		siteID = owner
	}

	return g.assertAnyRole(ctx, actor, siteID, "access_videos", videoRoles)
}

func (g *Guard) AssertIsAdmin(actor *Actor) (Decision, error) {
	if actor == nil || !actor.IsAdmin {
		return Decision{}, apperr.Unauthorized("You are not allowed to access this resource.")
	}

	return Decision{Capability: "admin", Admin: true}, nil
}

func (g *Guard) assertAnyRole(ctx context.Context, actor *Actor, siteID uuid.UUID, capability string, required []roles.Role) (Decision, error) {
	if actor == nil {
		return Decision{}, apperr.Unauthorized("You are not authenticated.")
	}

	if actor.IsAdmin {
		return Decision{Capability: capability, Admin: true, ShowReportData: true}, nil
	}

	su, err := g.requireAnyRole(ctx, actor, siteID, required)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Capability:     capability,
		SiteUser:       su,
		ShowReportData: roles.HasAnyRole(su.RolesMask, reportRoles),
	}, nil
}

// requireAnyRole distinguishes "site does not exist" from "site exists but
// you have no access": the missing-membership path loads the site before
// deciding between NotFound and Unauthorized. The caller's HTTP status
// mapping depends on that ordering.
func (g *Guard) requireAnyRole(ctx context.Context, actor *Actor, siteID uuid.UUID, required []roles.Role) (*models.SiteUser, error) {
	su, err := g.lookup.FindSiteUser(ctx, actor.ID, siteID)
	if err != nil {
		return nil, err
	}

	if su != nil {
		if roles.HasAnyRole(su.RolesMask, required) {
			return su, nil
		}

		return nil, apperr.Unauthorized("You are not allowed to access this resource.")
	}

	site, err := g.lookup.FindSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if site == nil {
		return nil, apperr.NotFound("The site could not be found.")
	}

	return nil, apperr.Unauthorized("You are not allowed to access this resource.")
}
