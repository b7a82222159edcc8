package operations

import (
	"fmt"

	"github.com/rectransport/rideshare"
	"github.com/urfave/cli"
)

// Version prints the client version and the build revision.
func Version() cli.Command {
	return cli.Command{
		Name:  "version",
		Usage: "print the rideshare version",
		Action: func(c *cli.Context) error {
			fmt.Println(rideshare.ClientVersion)
			if rideshare.BuildRevision != "" {
				fmt.Println("build:", rideshare.BuildRevision)
			}
			return nil
		},
	}
}
