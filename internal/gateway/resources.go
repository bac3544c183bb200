package gateway

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// ImageFile is a binary image attached to an event write.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *ImageFile) contentType() string {
	if f.ContentType != "" {
		return f.ContentType
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

// EventInput is the writable part of an event. A nil Image keeps the stored
// image on update; a zero ImageRef clears it. ImageFile takes precedence.
type EventInput struct {
	Title       string
	Date        model.EventDate
	Time        string
	Description string
	Image       *model.ImageRef
	ImageFile   *ImageFile
}

type eventBody struct {
	Title       string          `json:"title"`
	Date        model.EventDate `json:"date"`
	Time        string          `json:"time"`
	Description string          `json:"description"`
	Image       *model.ImageRef `json:"image,omitempty"`
}

type TransactionInput struct {
	Title    string                `json:"title"`
	Amount   model.Money           `json:"amount"`
	Type     model.TransactionType `json:"type"`
	Date     string                `json:"date"`
	Category *string               `json:"category,omitempty"`
}

func (c *Client) PrayerTimes(ctx context.Context) ([]model.PrayerTime, error) {
	var out []model.PrayerTime
	if err := c.get(ctx, "/prayer-times", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdatePrayerTime(ctx context.Context, id int64, patch model.PrayerTimePatch) (model.PrayerTime, error) {
	var out model.PrayerTime
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/prayer-times/%d", id), patch, &out)
	return out, err
}

func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := c.get(ctx, "/events", &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ImageURL = out[i].Image.Resolve(c.host)
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, in EventInput) (model.Event, error) {
	return c.writeEvent(ctx, http.MethodPost, "/events", in)
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, in EventInput) (model.Event, error) {
	return c.writeEvent(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), in)
}

func (c *Client) writeEvent(ctx context.Context, method, path string, in EventInput) (model.Event, error) {
	var out model.Event
	var err error

	if in.ImageFile != nil {
		if err := c.checkImageSize("image "+in.ImageFile.Name, len(in.ImageFile.Data)); err != nil {
			return out, err
		}
		fields := [][2]string{
			{"title", in.Title},
			{"date", in.Date.String()},
			{"time", in.Time},
			{"description", in.Description},
		}
		err = c.sendMultipart(ctx, method, path, fields, in.ImageFile, &out)
	} else {
		if in.Image != nil {
			if err := c.checkImageSize("inline image", in.Image.Size()); err != nil {
				return out, err
			}
		}
		body := eventBody{Title: in.Title, Date: in.Date, Time: in.Time, Description: in.Description, Image: in.Image}
		err = c.sendJSON(ctx, method, path, body, &out)
	}
	if err != nil {
		return model.Event{}, err
	}
	out.ImageURL = out.Image.Resolve(c.host)
	return out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

func (c *Client) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var out []model.Transaction
	if err := c.get(ctx, "/finance", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (model.Transaction, error) {
	var out model.Transaction
	err := c.sendJSON(ctx, http.MethodPost, "/finance", in, &out)
	return out, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/finance/%d", id), nil, nil)
}

func (c *Client) DonationInfo(ctx context.Context) (model.DonationInfo, error) {
	var out model.DonationInfo
	if err := c.get(ctx, "/donation-info", &out); err != nil {
		return model.DonationInfo{}, err
	}
	out.QrisURL = out.QrisImage.Resolve(c.host)
	return out, nil
}

func (c *Client) UpdateDonationInfo(ctx context.Context, in model.DonationInfo) (model.DonationInfo, error) {
	if err := c.checkImageSize("qris image", in.QrisImage.Size()); err != nil {
		return model.DonationInfo{}, err
	}
	var out model.DonationInfo
	if err := c.sendJSON(ctx, http.MethodPut, "/donation-info", in, &out); err != nil {
		return model.DonationInfo{}, err
	}
	out.QrisURL = out.QrisImage.Resolve(c.host)
	return out, nil
}

func (c *Client) ContactInfo(ctx context.Context) (model.ContactInfo, error) {
	var out model.ContactInfo
	err := c.get(ctx, "/contact-info", &out)
	return out, err
}

func (c *Client) UpdateContactInfo(ctx context.Context, in model.ContactInfo) (model.ContactInfo, error) {
	var out model.ContactInfo
	if err := c.sendJSON(ctx, http.MethodPut, "/contact-info", in, &out); err != nil {
		return model.ContactInfo{}, err
	}
	return out, nil
}

func (c *Client) AboutInfo(ctx context.Context) (model.AboutContent, error) {
	var out model.AboutContent
	if err := c.get(ctx, "/about-info", &out); err != nil {
		return model.AboutContent{}, err
	}
	out.ImageURL = out.Image.Resolve(c.host)
	return out, nil
}

func (c *Client) UpdateAboutInfo(ctx context.Context, in model.AboutContent) (model.AboutContent, error) {
	if err := c.checkImageSize("about image", in.Image.Size()); err != nil {
		return model.AboutContent{}, err
	}
	var out model.AboutContent
	if err := c.sendJSON(ctx, http.MethodPut, "/about-info", in, &out); err != nil {
		return model.AboutContent{}, err
	}
	out.ImageURL = out.Image.Resolve(c.host)
	return out, nil
}
