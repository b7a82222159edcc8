package main

import (
	"os"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/operations"
	"github.com/urfave/cli"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	app := buildApp()
	grip.EmergencyFatal(app.Run(os.Args))
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rideshare"
	app.Usage = "RecTransport ride dispatch service"
	app.Version = rideshare.ClientVersion

	app.Commands = []cli.Command{
		operations.Version(),
		operations.Service(),
	}

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "level",
			Value:  "info",
			EnvVar: "RIDESHARE_LOG_LEVEL",
			Usage:  "Specify lowest visible log level as string: 'emergency|alert|critical|error|warning|notice|info|debug|trace'",
		},
	}

	app.Before = func(c *cli.Context) error {
		if err := loggingSetup(app.Name, c.String("level")); err != nil {
			return errors.Wrap(err, "setting up logging")
		}
		// Match the CPU quota of the container.
		_, err := maxprocs.Set(maxprocs.Logger(grip.Infof))
		return errors.Wrap(err, "setting GOMAXPROCS")
	}

	return app
}

func loggingSetup(name, l string) error {
	if err := grip.SetSender(send.MakeErrorLogger()); err != nil {
		return err
	}
	grip.SetName(name)

	sender := grip.GetSender()
	info := sender.Level()
	info.Threshold = level.FromString(l)

	return sender.SetLevel(info)
}
