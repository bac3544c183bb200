package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Sign in as an administrator",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"MASJID_ADMIN_PASSWORD"}, Required: true},
	},
	Action: withApp(func(c *cli.Context, a *app) error {
		if err := a.session.Login(c.Context, strings.TrimSpace(c.String("email")), c.String("password")); err != nil {
			return cli.Exit(a.session.LastError(), 1)
		}
		user, _ := a.session.User()
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	}),
}

var logoutCommand = &cli.Command{
	Name:  "logout",
	Usage: "Forget the stored session",
	Action: withApp(func(c *cli.Context, a *app) error {
		a.session.Logout(c.Context)
		fmt.Fprintln(a.out, "Signed out")
		return nil
	}),
}

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the signed-in administrator",
	Action: withApp(func(c *cli.Context, a *app) error {
		user, ok := a.session.User()
		if !ok {
			fmt.Fprintln(a.out, "Not signed in")
			return nil
		}
		fmt.Fprintf(a.out, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
		return nil
	}),
}

var profileCommand = &cli.Command{
	Name:  "profile",
	Usage: "Change the administrator's name or password",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "password", EnvVars: []string{"MASJID_NEW_PASSWORD"}},
	},
	Action: withApp(func(c *cli.Context, a *app) error {
		var in gateway.ProfileUpdate
		if c.IsSet("name") {
			name := c.String("name")
			in.Name = &name
		}
		if c.IsSet("password") {
			password := c.String("password")
			in.Password = &password
		}
		if in.Name == nil && in.Password == nil {
			return cli.Exit("nothing to change: pass --name or --password", 1)
		}

		a.printNotifications()
		user, err := a.session.UpdateProfile(c.Context, in)
		if err != nil {
			a.notifier.Error("Could not update profile: " + gateway.MessageOf(err))
			return err
		}
		a.notifier.Success("Profile updated")
		fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
		return nil
	}),
}
