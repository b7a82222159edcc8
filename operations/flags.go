package operations

import (
	"strings"

	"github.com/urfave/cli"
)

const (
	confFlagName = "conf"
	hostFlagName = "host"
	portFlagName = "port"
)

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func serviceConfigFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:   joinFlagNames(confFlagName, "config", "c"),
		Usage:  "path to the service configuration file; settings in the environment take precedence",
		EnvVar: "RIDESHARE_CONFIG",
	})
}

func listenFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  hostFlagName,
			Usage: "override the address the API listens on",
		},
		cli.IntFlag{
			Name:  portFlagName,
			Usage: "override the port the API listens on",
		})
}
