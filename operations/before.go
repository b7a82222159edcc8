package operations

import (
	"github.com/evergreen-ci/utility"
	"github.com/mitchellh/go-homedir"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// requireFileExists fails if a path is given for the flag but no file is
// there. An unset flag is allowed since the environment can supply every
// setting.
func requireFileExists(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		if c.String(name) == "" {
			return nil
		}
		path, err := homedir.Expand(c.String(name))
		if err != nil {
			return errors.Wrapf(err, "expanding path '%s'", c.String(name))
		}
		if !utility.FileExists(path) {
			return errors.Errorf("configuration file '%s' does not exist", path)
		}
		return nil
	}
}

func requirePositivePort(c *cli.Context) error {
	if c.IsSet(portFlagName) && c.Int(portFlagName) <= 0 {
		return errors.Errorf("port must be positive, got %d", c.Int(portFlagName))
	}
	return nil
}

func mergeBeforeFuncs(ops ...cli.BeforeFunc) cli.BeforeFunc {
	return func(c *cli.Context) error {
		catcher := grip.NewBasicCatcher()

		for _, op := range ops {
			catcher.Add(op(c))
		}

		return catcher.Resolve()
	}
}
