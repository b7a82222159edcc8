package operations

import (
	"context"
	"fmt"

	"github.com/cheynewallace/tabby"
	"github.com/dustin/go-humanize"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/user"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/urfave/cli"
)

func seedDatabase() cli.Command {
	return cli.Command{
		Name:   "seed",
		Usage:  "create the database indexes and the default accounts, then exit",
		Flags:  serviceConfigFlags(),
		Before: requireFileExists(confFlagName),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, sc, err := setupEnvironment(ctx, c.String(confFlagName))
			if err != nil {
				return errors.WithStack(err)
			}

			catcher := grip.NewBasicCatcher()
			created, err := data.SeedDefaultUsers(ctx, sc, env.Settings())
			catcher.Wrap(err, "seeding default accounts")
			fmt.Printf("created %d default account(s)\n", created)

			users, err := sc.FindUsers(ctx)
			catcher.Wrap(err, "listing accounts")
			if err == nil {
				printAccounts(users)
			}
			catcher.Wrap(env.Close(ctx), "closing environment")

			return catcher.Resolve()
		},
	}
}

func printAccounts(users []user.DBUser) {
	t := tabby.New()
	t.AddHeader("Email", "Role", "Name", "Active", "Created")
	for _, u := range users {
		t.AddLine(u.EmailAddress, u.Role, u.Name, u.IsActive, humanize.Time(u.CreatedAt))
	}
	t.Print()
}
