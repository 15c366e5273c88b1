package payees

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"pubforge.dev/publisher-api/apperr"
	"pubforge.dev/publisher-api/models"
)

// SiteFlags is the subset of site settings the payee lifecycle needs.
type SiteFlags struct {
	TestSite bool
}

// Repository is the storage collaborator for payee rows and the site
// pointers referencing them. Find methods return nil without an error when
// the record is absent.
type Repository interface {
	FindSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error)
	FindSiteFlags(ctx context.Context, siteID uuid.UUID) (*SiteFlags, error)
	FindPayee(ctx context.Context, payeeID uuid.UUID) (*models.Payee, error)
	CreatePayee(ctx context.Context, payee *models.Payee) error
	SetSitePayee(ctx context.Context, siteID uuid.UUID, payeeID uuid.UUID) error
	SetPayeeCompleted(ctx context.Context, payeeID uuid.UUID, completed bool) error
	// UserHasPayeeAccess reports whether the user holds an owner or
	// payment role on some site currently pointing at the payee.
	UserHasPayeeAccess(ctx context.Context, userID uuid.UUID, payeeID uuid.UUID) (bool, error)
	SetPayeeNameUpdated(ctx context.Context, siteID uuid.UUID) error
	PayeeNameUpdated(ctx context.Context, siteID uuid.UUID) (bool, error)
}

// Caller identifies who is acting on a payee. Admins skip the cross-site
// access proof in ChoosePayee.
type Caller struct {
	ID      uuid.UUID
	IsAdmin bool
}

type Manager struct {
	repo   Repository
	signer *Signer
	now    func() time.Time
}

func NewManager(repo Repository, signer *Signer) *Manager {
	return &Manager{repo: repo, signer: signer, now: time.Now}
}

// CreatePayeeForSite mints a new payment identity and points the site at it.
// Any previous payee pointer is overwritten, the old payee row stays
// untouched. Test sites never get payees.
func (m *Manager) CreatePayeeForSite(ctx context.Context, siteID uuid.UUID, name string) (*models.Payee, error) {
	flags, err := m.repo.FindSiteFlags(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if flags == nil {
		return nil, apperr.NotFound("The site could not be found.")
	}

	if flags.TestSite {
		return nil, apperr.Unprocessable("Test Site: payees cannot be created for test sites.")
	}

	completed := true
	payee := &models.Payee{
		Name:             name,
		UUID:             uuid.NewString(),
		TipaltiCompleted: &completed,
	}

	if err := m.repo.CreatePayee(ctx, payee); err != nil {
		return nil, err
	}

	if err := m.repo.SetSitePayee(ctx, siteID, payee.ID); err != nil {
		return nil, err
	}

	return payee, nil
}

// ConfirmPayee marks the site's current payee as completed on the external
// processor side.
func (m *Manager) ConfirmPayee(ctx context.Context, siteID uuid.UUID) error {
	site, err := m.repo.FindSite(ctx, siteID)
	if err != nil {
		return err
	}

	if site == nil {
		return apperr.NotFound("The site could not be found.")
	}

	if site.PayeeID == nil {
		return apperr.Unprocessable("The site has no payee to confirm.")
	}

	return m.repo.SetPayeeCompleted(ctx, *site.PayeeID, true)
}

// ChoosePayee re-points the site at an existing payee. Non-admins must prove
// prior access to that payee through another site they hold an owner or
// payment role on. Concurrent calls against the same site race
// last-write-wins on the pointer, which is accepted.
func (m *Manager) ChoosePayee(ctx context.Context, caller *Caller, siteID uuid.UUID, payeeID uuid.UUID) error {
	if caller == nil {
		return apperr.Unauthorized("You are not authenticated.")
	}

	payee, err := m.repo.FindPayee(ctx, payeeID)
	if err != nil {
		return err
	}

	if payee == nil {
		return apperr.NotFound("The payee could not be found.")
	}

	if !caller.IsAdmin {
		ok, err := m.repo.UserHasPayeeAccess(ctx, caller.ID, payeeID)
		if err != nil {
			return err
		}

		if !ok {
			return apperr.Forbidden("You do not have access to this payee.")
		}
	}

	return m.repo.SetSitePayee(ctx, siteID, payee.ID)
}

// ConfirmPayeeName flags the site's payee name as reviewed. Idempotent and
// independent of whether a payee is attached at all.
func (m *Manager) ConfirmPayeeName(ctx context.Context, siteID uuid.UUID) error {
	return m.repo.SetPayeeNameUpdated(ctx, siteID)
}

// SitePayeeSettings is the composed payee panel payload.
type SitePayeeSettings struct {
	Payee                 *models.Payee `json:"payee"`
	PayeeNameUpdated      bool          `json:"payee_name_updated"`
	PaymentsHistoryIframe *string       `json:"payments_history_iframe"`
	EditProfileIframe     *string       `json:"edit_profile_iframe"`
}

// GetSitePayeeSettings gathers the payee record and the name-reviewed flag
// concurrently, then builds the signed portal iframes. Both iframes are nil
// without a payee.
func (m *Manager) GetSitePayeeSettings(ctx context.Context, siteID uuid.UUID, referer string) (*SitePayeeSettings, error) {
	var site *models.Site
	var nameUpdated bool

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := m.repo.FindSite(gctx, siteID)
		if err != nil {
			return err
		}

		site = s

		return nil
	})

	g.Go(func() error {
		flag, err := m.repo.PayeeNameUpdated(gctx, siteID)
		if err != nil {
			return err
		}

		nameUpdated = flag

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if site == nil {
		return nil, apperr.NotFound("The site could not be found.")
	}

	out := &SitePayeeSettings{PayeeNameUpdated: nameUpdated}

	if site.PayeeID == nil {
		return out, nil
	}

	payee, err := m.repo.FindPayee(ctx, *site.PayeeID)
	if err != nil {
		return nil, err
	}

	if payee == nil {
		return out, nil
	}

	out.Payee = payee

	ts := m.now().Unix()
	history := m.signer.IframeTag(m.signer.SignedURL(KindPaymentsHistory, payee.UUID, referer, ts))
	edit := m.signer.IframeTag(m.signer.SignedURL(KindEditProfile, payee.UUID, referer, ts))
	out.PaymentsHistoryIframe = &history
	out.EditProfileIframe = &edit

	return out, nil
}
