package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

var prayerCommand = &cli.Command{
	Name:  "prayer",
	Usage: "Prayer times",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List every prayer time",
			Action: withApp(func(c *cli.Context, a *app) error {
				store, err := a.openStore(c.Context, false)
				if err != nil {
					return err
				}
				renderPrayers(a.out, store.Snapshot().PrayerTimes)
				return nil
			}),
		},
		{
			Name:      "set",
			Usage:     "Change a prayer's time or visibility",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "time", Usage: "HH:MM"},
				&cli.BoolFlag{Name: "active"},
			},
			Action: withApp(func(c *cli.Context, a *app) error {
				store, err := a.admin(c.Context)
				if err != nil {
					return err
				}
				prayers, err := a.gw.PrayerTimes(c.Context)
				if err != nil {
					return err
				}
				target, ok := findPrayer(prayers, c.Args().First())
				if !ok {
					return cli.Exit(fmt.Sprintf("unknown prayer %q", c.Args().First()), 1)
				}

				var patch model.PrayerTimePatch
				if c.IsSet("time") {
					t := c.String("time")
					if !model.ValidClock(t) {
						return cli.Exit("time must be HH:MM", 1)
					}
					patch.Time = &t
				}
				if c.IsSet("active") {
					active := c.Bool("active")
					patch.IsActive = &active
				}
				_, err = store.UpdatePrayerTime(c.Context, target.ID, patch)
				return err
			}),
		},
	},
}

func findPrayer(prayers []model.PrayerTime, name string) (model.PrayerTime, bool) {
	for _, p := range prayers {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return model.PrayerTime{}, false
}

func eventFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, DD-MM-YYYY or a recurring label such as \"Setiap Sabtu\""},
		&cli.StringFlag{Name: "time"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "image", Usage: "Image file to upload, or an http(s)/data URL"},
	}
}

var eventsCommand = &cli.Command{
	Name:  "events",
	Usage: "Kajian and other events",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List events in date order",
			Action: withApp(func(c *cli.Context, a *app) error {
				store, err := a.openStore(c.Context, false)
				if err != nil {
					return err
				}
				renderEvents(a.out, model.SortEvents(store.Snapshot().Events))
				return nil
			}),
		},
		{
			Name:  "add",
			Usage: "Create an event",
			Flags: eventFlags(),
			Action: withApp(func(c *cli.Context, a *app) error {
				if c.String("title") == "" || c.String("date") == "" {
					return cli.Exit("--title and --date are required", 1)
				}
				in, err := eventInput(c, model.Event{})
				if err != nil {
					return err
				}
				store, err := a.admin(c.Context)
				if err != nil {
					return err
				}
				_, err = store.CreateEvent(c.Context, in)
				return err
			}),
		},
		{
			Name:      "update",
			Usage:     "Change an event; omitted flags keep their value",
			ArgsUsage: "<id>",
			Flags:     append(eventFlags(), &cli.BoolFlag{Name: "clear-image"}),
			Action: withApp(func(c *cli.Context, a *app) error {
				id, err := idArg(c)
				if err != nil {
					return err
				}
				store, err := a.admin(c.Context)
				if err != nil {
					return err
				}
				current, err := a.liveEvent(c.Context, id)
				if err != nil {
					return err
				}
				in, err := eventInput(c, current)
				if err != nil {
					return err
				}
				if c.Bool("clear-image") {
					in.Image, in.ImageFile = &model.ImageRef{}, nil
				}
				_, err = store.UpdateEvent(c.Context, id, in)
				return err
			}),
		},
		{
			Name:      "delete",
			Usage:     "Delete an event",
			ArgsUsage: "<id>",
			Action: withApp(func(c *cli.Context, a *app) error {
				id, err := idArg(c)
				if err != nil {
					return err
				}
				store, err := a.admin(c.Context)
				if err != nil {
					return err
				}
				return store.DeleteEvent(c.Context, id)
			}),
		},
	},
}

// liveEvent fetches the server's copy of an event. A missing id yields the
// zero event so the write itself reports the desync.
func (a *app) liveEvent(ctx context.Context, id int64) (model.Event, error) {
	events, err := a.gw.Events(ctx)
	if err != nil {
		return model.Event{}, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, nil
}

// eventInput overlays the flags that were set on base.
func eventInput(c *cli.Context, base model.Event) (gateway.EventInput, error) {
	in := gateway.EventInput{
		Title:       base.Title,
		Date:        base.Date,
		Time:        base.Time,
		Description: base.Description,
	}
	if c.IsSet("title") {
		in.Title = c.String("title")
	}
	if c.IsSet("date") {
		in.Date = model.ParseEventDate(c.String("date"))
	}
	if c.IsSet("time") {
		in.Time = c.String("time")
	}
	if c.IsSet("description") {
		in.Description = c.String("description")
	}
	if c.IsSet("image") {
		ref, file, err := imageArg(c.String("image"))
		if err != nil {
			return in, err
		}
		in.Image, in.ImageFile = ref, file
	}
	return in, nil
}

// imageArg treats URLs as references and anything else as a file to upload.
func imageArg(value string) (*model.ImageRef, *gateway.ImageFile, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return &model.ImageRef{}, nil, nil
	}
	if isURL(value) {
		ref := model.ParseImageRef(value)
		return &ref, nil, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return nil, nil, fmt.Errorf("read image: %w", err)
	}
	return nil, &gateway.ImageFile{
		Name:        filepath.Base(value),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(value))),
		Data:        data,
	}, nil
}

// inlineImageArg is imageArg for JSON-only resources: files become data URLs.
func inlineImageArg(value string) (model.ImageRef, error) {
	ref, file, err := imageArg(value)
	if err != nil {
		return model.ImageRef{}, err
	}
	if file == nil {
		return *ref, nil
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return model.InlineImage("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(file.Data)), nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:")
}

func idArg(c *cli.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid id %q", c.Args().First()), 1)
	}
	return id, nil
}

var financeCommand = &cli.Command{
	Name:  "finance",
	Usage: "Income and expense ledger",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "Record a transaction",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Required: true},
				&cli.StringFlag{Name: "amount", Required: true},
				&cli.StringFlag{Name: "type", Value: string(model.Income), Usage: "income or expense"},
				&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today on the server"},
				&cli.StringFlag{Name: "category"},
			},
			Action: withApp(func(c *cli.Context, a *app) error {
				amount, err := model.ParseMoney(c.String("amount"))
				if err != nil || amount <= 0 {
					return cli.Exit("amount must be a positive number", 1)
				}
				in := gateway.TransactionInput{
					Title:  c.String("title"),
					Amount: amount,
					Type:   model.TransactionType(strings.ToLower(c.String("type"))),
					Date:   c.String("date"),
				}
				if !in.Type.Valid() {
					return cli.Exit("type must be income or expense", 1)
				}
				if category := strings.TrimSpace(c.String("category")); category != "" {
					in.Category = &category
				}

				store, err := a.admin(c.Context)
				if err != nil {
					return err
				}
				_, err = store.CreateTransaction(c.Context, in)
				return err
			}),
		},
		{
			Name:      "delete",
			Usage:     "Delete a transaction",
			ArgsUsage: "<id>",
			Action: withApp(func(c *cli.Context, a *app) error {
				id, err := idArg(c)
				if err != nil {
					return err
				}
				store, err := a.admin(c.Context)
				if err != nil {
					return err
				}
				return store.DeleteTransaction(c.Context, id)
			}),
		},
		{
			Name:  "summary",
			Usage: "Show the ledger and its totals",
			Action: withApp(func(c *cli.Context, a *app) error {
				store, err := a.openStore(c.Context, false)
				if err != nil {
					return err
				}
				renderTransactions(a.out, store.Snapshot().Transactions, store.FinanceSummary())
				return nil
			}),
		},
	},
}

var donationCommand = &cli.Command{
	Name:  "donation",
	Usage: "Donation details",
	Subcommands: []*cli.Command{{
		Name:  "set",
		Usage: "Change donation details; omitted flags keep their value",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bank"},
			&cli.StringFlag{Name: "account-number"},
			&cli.StringFlag{Name: "account-name"},
			&cli.StringFlag{Name: "phone", Usage: "Confirmation phone"},
			&cli.StringFlag{Name: "qris", Usage: "QRIS image file or URL"},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			store, err := a.admin(c.Context)
			if err != nil {
				return err
			}
			in, err := a.gw.DonationInfo(c.Context)
			if err != nil {
				return err
			}
			setString(c, "bank", &in.BankName)
			setString(c, "account-number", &in.AccountNumber)
			setString(c, "account-name", &in.AccountName)
			setString(c, "phone", &in.ConfirmationPhone)
			if c.IsSet("qris") {
				if in.QrisImage, err = inlineImageArg(c.String("qris")); err != nil {
					return err
				}
			}
			_, err = store.UpdateDonationInfo(c.Context, in)
			return err
		}),
	}},
}

var contactCommand = &cli.Command{
	Name:  "contact",
	Usage: "Contact details",
	Subcommands: []*cli.Command{{
		Name:  "set",
		Usage: "Change contact details; omitted flags keep their value",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address"},
			&cli.StringFlag{Name: "map-embed-link"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "hours", Usage: "Operational hours"},
			&cli.StringFlag{Name: "facebook"},
			&cli.StringFlag{Name: "instagram"},
			&cli.StringFlag{Name: "youtube"},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			store, err := a.admin(c.Context)
			if err != nil {
				return err
			}
			in, err := a.gw.ContactInfo(c.Context)
			if err != nil {
				return err
			}
			setString(c, "address", &in.Address)
			setString(c, "map-embed-link", &in.MapEmbedLink)
			setString(c, "phone", &in.Phone)
			setString(c, "email", &in.Email)
			setString(c, "hours", &in.OperationalHours)
			setString(c, "facebook", &in.Facebook)
			setString(c, "instagram", &in.Instagram)
			setString(c, "youtube", &in.Youtube)
			_, err = store.UpdateContactInfo(c.Context, in)
			return err
		}),
	}},
}

var aboutCommand = &cli.Command{
	Name:  "about",
	Usage: "About the masjid",
	Subcommands: []*cli.Command{{
		Name:  "set",
		Usage: "Change the about page; omitted flags keep their value",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history"},
			&cli.StringFlag{Name: "vision"},
			&cli.StringFlag{Name: "mission"},
			&cli.StringFlag{Name: "image", Usage: "Image file or URL"},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			store, err := a.admin(c.Context)
			if err != nil {
				return err
			}
			in, err := a.gw.AboutInfo(c.Context)
			if err != nil {
				return err
			}
			setString(c, "history", &in.History)
			setString(c, "vision", &in.Vision)
			setString(c, "mission", &in.Mission)
			if c.IsSet("image") {
				if in.Image, err = inlineImageArg(c.String("image")); err != nil {
					return err
				}
			}
			_, err = store.UpdateAboutInfo(c.Context, in)
			return err
		}),
	}},
}

func setString(c *cli.Context, flag string, dst *string) {
	if c.IsSet(flag) {
		*dst = c.String(flag)
	}
}
