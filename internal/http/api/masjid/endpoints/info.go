package endpoints

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

func (c *ContentController) checkInlineImage(ref model.ImageRef) *api.APIError {
	if int64(ref.Size()) > c.maxUploadBytes {
		return api.NewError(http.StatusRequestEntityTooLarge, fmt.Sprintf("image exceeds %d bytes", c.maxUploadBytes))
	}
	return nil
}

// GET /api/donation-info
func (c *ContentController) getDonationInfo(_ *gin.Context) (any, *api.APIError) {
	info, err := c.store.GetDonationInfo()
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not load donation info")
	}
	return info, nil
}

// PUT /api/donation-info
func (c *ContentController) updateDonationInfo(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var req model.DonationInfo
	if err := api.BindJSON(ctx, &req); err != nil {
		return nil, err
	}
	if err := c.checkInlineImage(req.QrisImage); err != nil {
		return nil, err
	}
	info, err := c.store.UpsertDonationInfo(req)
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not update donation info")
	}
	return info, nil
}

// GET /api/contact-info
func (c *ContentController) getContactInfo(_ *gin.Context) (any, *api.APIError) {
	info, err := c.store.GetContactInfo()
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not load contact info")
	}
	return info, nil
}

// PUT /api/contact-info
func (c *ContentController) updateContactInfo(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var req model.ContactInfo
	if err := api.BindJSON(ctx, &req); err != nil {
		return nil, err
	}
	info, err := c.store.UpsertContactInfo(req)
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not update contact info")
	}
	return info, nil
}

// GET /api/about-info
func (c *ContentController) getAboutInfo(_ *gin.Context) (any, *api.APIError) {
	about, err := c.store.GetAboutContent()
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not load about info")
	}
	return about, nil
}

// PUT /api/about-info
func (c *ContentController) updateAboutInfo(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var req model.AboutContent
	if err := api.BindJSON(ctx, &req); err != nil {
		return nil, err
	}
	if err := c.checkInlineImage(req.Image); err != nil {
		return nil, err
	}
	about, err := c.store.UpsertAboutContent(req)
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not update about info")
	}
	return about, nil
}
