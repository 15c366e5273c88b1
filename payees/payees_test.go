package payees

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pubforge.dev/publisher-api/apperr"
	"pubforge.dev/publisher-api/models"
)

type fakeRepo struct {
	sites       map[uuid.UUID]*models.Site
	flags       map[uuid.UUID]*SiteFlags
	payees      map[uuid.UUID]*models.Payee
	payeeAccess map[uuid.UUID]uuid.UUID // userID -> payeeID they can reach
	nameUpdated map[uuid.UUID]bool
	created     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sites:       map[uuid.UUID]*models.Site{},
		flags:       map[uuid.UUID]*SiteFlags{},
		payees:      map[uuid.UUID]*models.Payee{},
		payeeAccess: map[uuid.UUID]uuid.UUID{},
		nameUpdated: map[uuid.UUID]bool{},
	}
}

func (f *fakeRepo) FindSite(_ context.Context, siteID uuid.UUID) (*models.Site, error) {
	return f.sites[siteID], nil
}

func (f *fakeRepo) FindSiteFlags(_ context.Context, siteID uuid.UUID) (*SiteFlags, error) {
	return f.flags[siteID], nil
}

func (f *fakeRepo) FindPayee(_ context.Context, payeeID uuid.UUID) (*models.Payee, error) {
	return f.payees[payeeID], nil
}

func (f *fakeRepo) CreatePayee(_ context.Context, payee *models.Payee) error {
	payee.ID = uuid.New()
	f.payees[payee.ID] = payee
	f.created++

	return nil
}

func (f *fakeRepo) SetSitePayee(_ context.Context, siteID uuid.UUID, payeeID uuid.UUID) error {
	site, ok := f.sites[siteID]
	if !ok {
		site = &models.Site{ID: siteID}
		f.sites[siteID] = site
	}

	site.PayeeID = &payeeID

	return nil
}

func (f *fakeRepo) SetPayeeCompleted(_ context.Context, payeeID uuid.UUID, completed bool) error {
	f.payees[payeeID].TipaltiCompleted = &completed

	return nil
}

func (f *fakeRepo) UserHasPayeeAccess(_ context.Context, userID uuid.UUID, payeeID uuid.UUID) (bool, error) {
	return f.payeeAccess[userID] == payeeID, nil
}

func (f *fakeRepo) SetPayeeNameUpdated(_ context.Context, siteID uuid.UUID) error {
	f.nameUpdated[siteID] = true

	return nil
}

func (f *fakeRepo) PayeeNameUpdated(_ context.Context, siteID uuid.UUID) (bool, error) {
	return f.nameUpdated[siteID], nil
}

func newManager(repo *fakeRepo) *Manager {
	m := NewManager(repo, NewSigner("https://payments.example.com", []byte("shared-key")))
	m.now = func() time.Time {
		return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	return m
}

func TestCreatePayeeForSite(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	repo.sites[siteID] = &models.Site{ID: siteID}
	repo.flags[siteID] = &SiteFlags{}

	payee, err := newManager(repo).CreatePayeeForSite(context.Background(), siteID, "Example LLC")

	require.NoError(t, err)
	assert.Equal(t, "Example LLC", payee.Name)
	assert.NotEmpty(t, payee.UUID)
	require.NotNil(t, payee.TipaltiCompleted)
	assert.True(t, *payee.TipaltiCompleted)
	require.NotNil(t, repo.sites[siteID].PayeeID)
	assert.Equal(t, payee.ID, *repo.sites[siteID].PayeeID)
}

func TestCreatePayeeOverwritesPointer(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	old := uuid.New()
	repo.sites[siteID] = &models.Site{ID: siteID, PayeeID: &old}
	repo.flags[siteID] = &SiteFlags{}
	repo.payees[old] = &models.Payee{ID: old, Name: "Old"}

	payee, err := newManager(repo).CreatePayeeForSite(context.Background(), siteID, "New LLC")

	require.NoError(t, err)
	assert.Equal(t, payee.ID, *repo.sites[siteID].PayeeID)
	// The prior payee row is untouched.
	assert.Equal(t, "Old", repo.payees[old].Name)
}

func TestCreatePayeeRejectsTestSites(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	repo.flags[siteID] = &SiteFlags{TestSite: true}

	_, err := newManager(repo).CreatePayeeForSite(context.Background(), siteID, "Example LLC")

	assert.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	assert.Contains(t, err.Error(), "Test Site")
	assert.Zero(t, repo.created)
}

func TestCreatePayeeMissingSite(t *testing.T) {
	_, err := newManager(newFakeRepo()).CreatePayeeForSite(context.Background(), uuid.New(), "Example LLC")

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestConfirmPayee(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	payeeID := uuid.New()
	repo.sites[siteID] = &models.Site{ID: siteID, PayeeID: &payeeID}
	repo.payees[payeeID] = &models.Payee{ID: payeeID}

	mgr := newManager(repo)

	require.NoError(t, mgr.ConfirmPayee(context.Background(), siteID))
	assert.True(t, *repo.payees[payeeID].TipaltiCompleted)

	err := mgr.ConfirmPayee(context.Background(), uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	bare := uuid.New()
	repo.sites[bare] = &models.Site{ID: bare}
	err = mgr.ConfirmPayee(context.Background(), bare)
	assert.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
}

func TestChoosePayee(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	payeeID := uuid.New()
	userID := uuid.New()
	repo.sites[siteID] = &models.Site{ID: siteID}
	repo.payees[payeeID] = &models.Payee{ID: payeeID, UUID: uuid.NewString()}
	mgr := newManager(repo)
	ctx := context.Background()

	// Missing payee.
	err := mgr.ChoosePayee(ctx, &Caller{ID: userID}, siteID, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// No cross-site proof.
	err = mgr.ChoosePayee(ctx, &Caller{ID: userID}, siteID, payeeID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	// With an owner/payment role on a site already pointing at the payee.
	repo.payeeAccess[userID] = payeeID
	require.NoError(t, mgr.ChoosePayee(ctx, &Caller{ID: userID}, siteID, payeeID))
	assert.Equal(t, payeeID, *repo.sites[siteID].PayeeID)

	// Admins skip the proof.
	other := uuid.New()
	repo.sites[other] = &models.Site{ID: other}
	require.NoError(t, mgr.ChoosePayee(ctx, &Caller{ID: uuid.New(), IsAdmin: true}, other, payeeID))
}

func TestConfirmPayeeNameWithoutPayee(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	mgr := newManager(repo)

	require.NoError(t, mgr.ConfirmPayeeName(context.Background(), siteID))
	assert.True(t, repo.nameUpdated[siteID])

	// Idempotent.
	require.NoError(t, mgr.ConfirmPayeeName(context.Background(), siteID))
	assert.True(t, repo.nameUpdated[siteID])
}

func TestGetSitePayeeSettings(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	payeeID := uuid.New()
	repo.sites[siteID] = &models.Site{ID: siteID, PayeeID: &payeeID}
	repo.payees[payeeID] = &models.Payee{ID: payeeID, Name: "Example LLC", UUID: "abc-123"}
	repo.nameUpdated[siteID] = true

	got, err := newManager(repo).GetSitePayeeSettings(context.Background(), siteID, "https://dashboard.example.com/payments")

	require.NoError(t, err)
	assert.True(t, got.PayeeNameUpdated)
	require.NotNil(t, got.Payee)
	require.NotNil(t, got.PaymentsHistoryIframe)
	require.NotNil(t, got.EditProfileIframe)
	assert.Contains(t, *got.PaymentsHistoryIframe, "PayeeDashboard/PaymentsHistory")
	assert.Contains(t, *got.EditProfileIframe, "Payees/PayeeDashboard.aspx")
}

func TestGetSitePayeeSettingsWithoutPayee(t *testing.T) {
	repo := newFakeRepo()
	siteID := uuid.New()
	repo.sites[siteID] = &models.Site{ID: siteID}

	got, err := newManager(repo).GetSitePayeeSettings(context.Background(), siteID, "")

	require.NoError(t, err)
	assert.Nil(t, got.Payee)
	assert.Nil(t, got.PaymentsHistoryIframe)
	assert.Nil(t, got.EditProfileIframe)
	assert.False(t, got.PayeeNameUpdated)
}
