package operations

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/route"
	"github.com/rectransport/rideshare/service"
	"github.com/urfave/cli"
)

func startWebService() cli.Command {
	return cli.Command{
		Name:   "web",
		Usage:  "start the rideshare REST API",
		Flags:  serviceConfigFlags(listenFlags()...),
		Before: mergeBeforeFuncs(requireFileExists(confFlagName), requirePositivePort),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			defer recovery.LogStackTraceAndExit("rideshare web service")

			env, sc, err := setupEnvironment(ctx, c.String(confFlagName))
			if err != nil {
				return errors.WithStack(err)
			}
			settings := env.Settings()
			if c.IsSet(hostFlagName) {
				settings.Server.Host = c.String(hostFlagName)
			}
			if c.IsSet(portFlagName) {
				settings.Server.Port = c.Int(portFlagName)
			}

			grip.Notice(message.Fields{
				"build":       rideshare.BuildRevision,
				"version":     rideshare.ClientVersion,
				"environment": settings.Environment,
				"debug":       settings.DebugRoutesEnabled(),
				"process":     grip.Name(),
			})

			seeded, err := data.SeedDefaultUsers(ctx, sc, settings)
			grip.Error(message.WrapError(err, message.Fields{
				"message": "could not seed default accounts",
			}))
			grip.InfoWhen(seeded > 0, message.Fields{
				"message": "seeded default accounts",
				"created": seeded,
			})

			tokens, err := auth.NewTokenManager(settings.Auth)
			if err != nil {
				return errors.Wrap(err, "creating token manager")
			}

			handler, err := service.GetRouter(route.HandlerOpts{
				Connector: sc,
				Settings:  settings,
				Tokens:    tokens,
			})
			if err != nil {
				return errors.Wrap(err, "building router")
			}

			server := service.GetServer(fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port), handler)

			go listenForSignals(cancel)

			serverErr := make(chan error, 1)
			go func() {
				defer recovery.LogStackTraceAndContinue("rideshare web server")
				defer cancel()
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
				close(serverErr)
			}()

			<-ctx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(settings.Server.ShutdownWaitSeconds)*time.Second)
			defer shutdownCancel()

			catcher := grip.NewBasicCatcher()
			catcher.Wrap(server.Shutdown(shutdownCtx), "shutting down web server")
			catcher.Add(<-serverErr)
			catcher.Wrap(env.Close(shutdownCtx), "closing environment")
			grip.Notice("web service terminated")

			return catcher.Resolve()
		},
	}
}
