package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/helpers"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/utils"
)

// GetSiteVideos lists the videos of a site, cursor paginated.
func GetSiteVideos(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanAccessVideos(c.Context(), helpers.GetActor(c), siteID, "")
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	videos := []models.Video{}
	query := app.DB().Model(&models.Video{}).
		Where(&models.Video{SiteID: siteID})

	return helpers.PaginateQuery(videos, query, c, helpers.PaginatedItemOpts{
		RouteName: "api.sites.videos.index",
	})
}

// GetVideo resolves a video by slug. Access is checked against the owning
// site, not the one in the URL, so a cross-site slug comes out as the
// guard's verdict for the real owner.
func GetVideo(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !utils.IsValidSlug(slug) {
		return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
			"error": []string{"The video could not be found."},
		})
	}

	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanAccessVideos(c.Context(), helpers.GetActor(c), siteID, slug)
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	video := &models.Video{}
	if err := app.DB().Where(&models.Video{Slug: slug}).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
				"error": []string{"The video could not be found."},
			})
		}

		return failWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": video})
}

// GetSitePlaylists lists the playlists of a site, cursor paginated.
func GetSitePlaylists(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanAccessVideos(c.Context(), helpers.GetActor(c), siteID, "")
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	playlists := []models.Playlist{}
	query := app.DB().Model(&models.Playlist{}).
		Where(&models.Playlist{SiteID: siteID})

	return helpers.PaginateQuery(playlists, query, c, helpers.PaginatedItemOpts{
		RouteName: "api.sites.playlists.index",
	})
}

// GetPlaylistVideos lists the videos of a playlist in position order.
func GetPlaylistVideos(c *fiber.Ctx) error {
	siteID, err := parseUuidParam(c, "site_id")
	if err != nil {
		return failWithError(c, err)
	}

	playlistID, err := parseUuidParam(c, "playlist_id")
	if err != nil {
		return failWithError(c, err)
	}

	decision, err := siteGuard().AssertCanAccessVideos(c.Context(), helpers.GetActor(c), siteID, "")
	if err != nil {
		return failWithError(c, err)
	}

	recordDecision(c, decision)

	playlist := &models.Playlist{}
	if err := app.DB().Where(&models.Playlist{ID: playlistID, SiteID: siteID}).First(&playlist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(&fiber.Map{
				"error": []string{"The playlist could not be found."},
			})
		}

		return failWithError(c, err)
	}

	videos := []models.Video{}
	if err := app.DB().Model(&models.Video{}).
		Joins("INNER JOIN playlist_videos pv ON pv.video_id = videos.id").
		Where("pv.playlist_id = ? AND pv.deleted_at IS NULL", playlistID).
		Order("pv.position asc").
		Find(&videos).Error; err != nil {
		return failWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{"data": videos})
}
