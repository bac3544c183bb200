package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("board failed")
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "board",
		Usage: "Masjid information board and admin console",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Backend API base URL (overrides MASJID_API_URL)",
			},
			&cli.StringFlag{
				Name:  "session-file",
				Usage: "Where the admin session is kept (overrides MASJID_SESSION_FILE)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "zerolog level (overrides MASJID_LOG_LEVEL)",
			},
		},
		Commands: []*cli.Command{
			boardCommand,
			loginCommand,
			logoutCommand,
			whoamiCommand,
			profileCommand,
			prayerCommand,
			eventsCommand,
			financeCommand,
			donationCommand,
			contactCommand,
			aboutCommand,
		},
	}
}
