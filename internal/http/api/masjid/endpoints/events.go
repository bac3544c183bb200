package endpoints

import (
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/masjid/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/storage"
)

// eventWrite is an event request decoded from either multipart or JSON.
type eventWrite struct {
	fields packets.EventRequest
	file   *multipart.FileHeader
}

func (c *ContentController) bindEvent(ctx *gin.Context) (eventWrite, *api.APIError) {
	var w eventWrite

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		if err := ctx.Request.ParseMultipartForm(c.maxUploadBytes); err != nil {
			return w, api.BindError(err)
		}
		w.fields = packets.EventRequest{
			Title:       ctx.PostForm("title"),
			Date:        ctx.PostForm("date"),
			Time:        ctx.PostForm("time"),
			Description: ctx.PostForm("description"),
		}
		if img, ok := ctx.GetPostForm("image"); ok {
			w.fields.Image = &img
		}
		if fh, err := ctx.FormFile("image"); err == nil {
			w.file = fh
		} else if !errors.Is(err, http.ErrMissingFile) {
			return w, api.BindError(err)
		}
	} else if err := api.BindJSON(ctx, &w.fields); err != nil {
		return w, err
	}

	w.fields.Title = strings.TrimSpace(w.fields.Title)
	w.fields.Date = strings.TrimSpace(w.fields.Date)
	if w.fields.Title == "" || w.fields.Date == "" {
		return w, api.NewError(http.StatusBadRequest, "title and date are required")
	}
	return w, nil
}

// image resolves the reference to store: an uploaded file, an explicit
// JSON value, or keep (ok == false).
func (c *ContentController) image(w eventWrite) (ref model.ImageRef, ok bool, apiErr *api.APIError) {
	if w.file != nil {
		if w.file.Size > c.maxUploadBytes {
			return ref, false, api.NewError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("image exceeds %d bytes", c.maxUploadBytes))
		}
		saved, err := c.storage.SaveImage(w.file)
		if errors.Is(err, storage.ErrUnsupportedType) {
			return ref, false, api.NewError(http.StatusBadRequest, err.Error())
		}
		if err != nil {
			log.Error().Err(err).Msg("[events] save image failed")
			return ref, false, api.NewError(http.StatusInternalServerError, "could not save image")
		}
		return saved, true, nil
	}
	if w.fields.Image != nil {
		ref = model.ParseImageRef(*w.fields.Image)
		if int64(ref.Size()) > c.maxUploadBytes {
			return model.ImageRef{}, false, api.NewError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("image exceeds %d bytes", c.maxUploadBytes))
		}
		return ref, true, nil
	}
	return ref, false, nil
}

func (c *ContentController) dropImage(ref model.ImageRef) {
	if err := c.storage.Delete(ref); err != nil {
		log.Warn().Err(err).Str("image", ref.String()).Msg("[events] could not remove old image")
	}
}

// GET /api/events
func (c *ContentController) listEvents(_ *gin.Context) (any, *api.APIError) {
	events, err := c.store.ListEvents()
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not list events")
	}
	return events, nil
}

// POST /api/events
func (c *ContentController) createEvent(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	w, apiErr := c.bindEvent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	img, _, apiErr := c.image(w)
	if apiErr != nil {
		return nil, apiErr
	}

	created, err := c.store.CreateEvent(model.Event{
		Title:       w.fields.Title,
		Date:        model.ParseEventDate(w.fields.Date),
		Time:        w.fields.Time,
		Description: w.fields.Description,
		Image:       img,
	})
	if err != nil {
		c.dropImage(img)
		return nil, api.NewError(http.StatusInternalServerError, "could not create event")
	}
	return api.Created{Body: created}, nil
}

// PUT /api/events/:id
func (c *ContentController) updateEvent(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "events")
	if apiErr != nil {
		return nil, apiErr
	}
	existing, err := c.store.GetEvent(id)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().Int64("id", id).Msg("[events] update of missing event")
		return nil, api.NewError(http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not load event")
	}

	w, apiErr := c.bindEvent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	img, replace, apiErr := c.image(w)
	if apiErr != nil {
		return nil, apiErr
	}

	next := *existing
	next.Title = w.fields.Title
	next.Date = model.ParseEventDate(w.fields.Date)
	next.Time = w.fields.Time
	next.Description = w.fields.Description
	if replace {
		next.Image = img
	}

	updated, err := c.store.UpdateEvent(next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.NewError(http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not update event")
	}
	if replace && existing.Image != img {
		c.dropImage(existing.Image)
	}
	return updated, nil
}

// DELETE /api/events/:id
func (c *ContentController) deleteEvent(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "events")
	if apiErr != nil {
		return nil, apiErr
	}
	existing, err := c.store.GetEvent(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.NewError(http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not load event")
	}

	if err := c.store.DeleteEvent(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NewError(http.StatusNotFound, "Event not found")
		}
		return nil, api.NewError(http.StatusInternalServerError, "could not delete event")
	}
	c.dropImage(existing.Image)
	return packets.MessageResponse{Message: "Event deleted successfully"}, nil
}
