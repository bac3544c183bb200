package endpoints

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/masjid/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// GET /api/prayer-times
// Every name of the fixed set is returned; missing ones are created inactive.
func (c *ContentController) listPrayerTimes(_ *gin.Context) (any, *api.APIError) {
	prayers, err := c.store.ListPrayerTimes()
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not list prayer times")
	}

	present := make(map[string]bool, len(prayers))
	for _, p := range prayers {
		present[p.Name] = true
	}
	for _, name := range model.PrayerNames() {
		if present[name] {
			continue
		}
		def := model.DefaultPrayerTime(name)
		def.IsActive = false
		created, err := c.store.CreatePrayerTime(def)
		if err != nil {
			log.Error().Err(err).Str("name", name).Msg("[prayer-times] could not create missing prayer time")
			return nil, api.NewError(http.StatusInternalServerError, "could not list prayer times")
		}
		prayers = append(prayers, *created)
	}
	return prayers, nil
}

// PUT /api/prayer-times/:id
func (c *ContentController) updatePrayerTime(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "prayer-times")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdatePrayerTimeRequest
	if err := api.BindJSON(ctx, &req); err != nil {
		return nil, err
	}
	if req.Time != nil && !model.ValidClock(*req.Time) {
		return nil, api.NewError(http.StatusBadRequest, "time must be HH:MM")
	}

	updated, err := c.store.UpdatePrayerTime(id, model.PrayerTimePatch{Time: req.Time, IsActive: req.IsActive})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.NewError(http.StatusNotFound, "Prayer time not found")
	}
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not update prayer time")
	}
	return updated, nil
}
