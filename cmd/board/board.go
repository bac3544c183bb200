package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
)

var boardCommand = &cli.Command{
	Name:  "board",
	Usage: "Show the live prayer board",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "once", Usage: "Render a single frame and exit"},
		&cli.IntFlag{Name: "events", Value: 3, Usage: "Number of upcoming events to show"},
		&cli.DurationFlag{Name: "tick", Value: time.Second, Usage: "Redraw interval"},
	},
	Action: withApp(func(c *cli.Context, a *app) error {
		ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := a.openStore(ctx, !c.Bool("once"))
		if err != nil {
			return err
		}

		draw := func(clear bool) {
			if clear {
				fmt.Fprint(a.out, "\033[H\033[2J")
			}
			note, _ := a.notifier.Current()
			renderBoard(a.out, boardFrame{
				Page:   store.Board(time.Now(), c.Int("events")),
				Status: store.Status(),
				Note:   note,
				Now:    time.Now(),
			})
		}

		if c.Bool("once") {
			draw(false)
			return nil
		}

		ticker := time.NewTicker(c.Duration("tick"))
		defer ticker.Stop()
		for {
			draw(true)
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}),
}
