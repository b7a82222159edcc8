package operations

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/thirdparty"
	"github.com/urfave/cli"
)

// Service groups the commands that run against the database.
func Service() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "run rideshare services",
		Subcommands: []cli.Command{
			startWebService(),
			seedDatabase(),
		},
	}
}

// setupEnvironment configures the global environment from the settings
// file and the process environment, and returns a connector backed by it.
// The caller must close the environment.
func setupEnvironment(ctx context.Context, confPath string) (rideshare.Environment, *data.DBConnector, error) {
	path, err := homedir.Expand(confPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "expanding configuration path '%s'", confPath)
	}
	env, err := rideshare.NewEnvironment(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "configuring application environment")
	}
	rideshare.SetEnvironment(env)

	estimator := thirdparty.NewMapsClient(env.Settings().Maps)
	if maps, ok := estimator.(*thirdparty.MapsClient); ok {
		env.RegisterCloser("maps client", func(context.Context) error {
			maps.Close()
			return nil
		})
	}

	sc := data.NewDBConnector(estimator)
	if err = sc.EnsureIndexes(ctx); err != nil {
		grip.Error(message.WrapError(env.Close(ctx), message.Fields{
			"message": "closing environment after index setup failed",
		}))
		return nil, nil, errors.Wrap(err, "ensuring indexes")
	}

	return env, sc, nil
}

// listenForSignals cancels the context on SIGTERM or an interrupt.
func listenForSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, os.Interrupt)
	sig := <-sigChan
	grip.Info(message.Fields{
		"message": "received signal, shutting down",
		"signal":  sig.String(),
	})
	cancel()
}
