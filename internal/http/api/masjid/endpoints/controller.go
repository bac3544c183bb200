package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/storage"
)

type ContentController struct {
	store          db.Store
	storage        storage.Storage
	maxUploadBytes int64
}

func newContentController(store db.Store, storage storage.Storage, maxUploadBytes int64) *ContentController {
	return &ContentController{store: store, storage: storage, maxUploadBytes: maxUploadBytes}
}

// PublicModule mounts the anonymous reads.
func PublicModule(store db.Store, storage storage.Storage, maxUploadBytes int64) api.Module {
	ctl := newContentController(store, storage, maxUploadBytes)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/prayer-times", ctl.listPrayerTimes)
		c.PUBLIC_GET("/events", ctl.listEvents)
		c.PUBLIC_GET("/finance", ctl.listTransactions)
		c.PUBLIC_GET("/donation-info", ctl.getDonationInfo)
		c.PUBLIC_GET("/contact-info", ctl.getContactInfo)
		c.PUBLIC_GET("/about-info", ctl.getAboutInfo)
	})
}

// AdminModule mounts the writes (JWT required).
func AdminModule(store db.Store, storage storage.Storage, maxUploadBytes int64) api.Module {
	ctl := newContentController(store, storage, maxUploadBytes)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUT("/prayer-times/:id", ctl.updatePrayerTime)

		c.POST("/events", ctl.createEvent)
		c.PUT("/events/:id", ctl.updateEvent)
		c.DELETE("/events/:id", ctl.deleteEvent)

		c.POST("/finance", ctl.createTransaction)
		c.DELETE("/finance/:id", ctl.deleteTransaction)

		c.PUT("/donation-info", ctl.updateDonationInfo)
		c.PUT("/contact-info", ctl.updateContactInfo)
		c.PUT("/about-info", ctl.updateAboutInfo)
	})
}

func parseID(ctx *gin.Context, component string) (int64, *api.APIError) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn().Str("id", ctx.Param("id")).Msgf("[%s] invalid id", component)
		return 0, api.NewError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
