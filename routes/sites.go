package routes

import (
	"github.com/gofiber/fiber/v2"
	"pubforge.dev/publisher-api/controllers"
	"pubforge.dev/publisher-api/middlewares"
)

// RegisterSiteRoutes wires every site-scoped resource. All of them are
// private and every handler must record a permission decision.
func RegisterSiteRoutes(g fiber.Router) {
	g.Use(middlewares.AuthProtected(), middlewares.ValidateJWT(), middlewares.CheckPermissions(), middlewares.RequireDecision())

	// Settings
	g.Get("/:site_id<guid>/settings", controllers.GetSiteSettings).Name("api.sites.settings.show")
	g.Patch("/:site_id<guid>/settings", controllers.PatchSiteSettings).Name("api.sites.settings.update")

	// Revenue share
	g.Get("/:site_id<guid>/revenue-share", controllers.GetSiteRevenueShare).Name("api.sites.revenue-share.show")

	// Payees
	g.Get("/:site_id<guid>/payees", controllers.GetSitePayeeSettings).Name("api.sites.payees.show")
	g.Post("/:site_id<guid>/payees", controllers.CreateSitePayee).Name("api.sites.payees.create")
	g.Put("/:site_id<guid>/payees/:payee_id<guid>", controllers.ChooseSitePayee).Name("api.sites.payees.choose")
	g.Post("/:site_id<guid>/payees/confirm", controllers.ConfirmSitePayee).Name("api.sites.payees.confirm")
	g.Post("/:site_id<guid>/payees/name/confirm", controllers.ConfirmSitePayeeName).Name("api.sites.payees.name.confirm")

	// Site users
	g.Get("/:site_id<guid>/users", controllers.GetSiteUsers).Name("api.sites.users.index")
	g.Post("/:site_id<guid>/users", controllers.GrantSiteUser).Name("api.sites.users.grant")
	g.Patch("/:site_id<guid>/users/:user_id<guid>", controllers.UpdateSiteUser).Name("api.sites.users.update")
	g.Delete("/:site_id<guid>/users/:user_id<guid>", controllers.RevokeSiteUser).Name("api.sites.users.revoke")

	// Videos
	g.Get("/:site_id<guid>/videos", controllers.GetSiteVideos).Name("api.sites.videos.index")
	g.Get("/:site_id<guid>/videos/:slug", controllers.GetVideo).Name("api.sites.videos.show")
	g.Get("/:site_id<guid>/playlists", controllers.GetSitePlaylists).Name("api.sites.playlists.index")
	g.Get("/:site_id<guid>/playlists/:playlist_id<guid>/videos", controllers.GetPlaylistVideos).Name("api.sites.playlists.videos.index")
}

// RegisterAdminRoutes wires the support tooling. The route policy restricts
// these to the admin subject.
func RegisterAdminRoutes(g fiber.Router) {
	g.Use(middlewares.AuthProtected(), middlewares.ValidateJWT(), middlewares.CheckPermissions(), middlewares.RequireDecision())

	g.Post("/sites", controllers.CreateSite).Name("api.admin.sites.create")
	g.Put("/sites/:site_id<guid>/health-check-override", controllers.PutHealthCheckOverride).Name("api.admin.sites.health-check-override.update")
}
