package cmd

import (
	"github.com/df07/go-bdpt-renderer/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("bdpt-renderer")

// globalFlags is the part of *cli.Context the verbosity is read from
type globalFlags interface {
	GlobalBool(name string) bool
}

// verbosity maps -v to Info and -vv to Debug. Without either flag the
// level is left alone.
func verbosity(flags globalFlags) (log.Level, bool) {
	switch {
	case flags.GlobalBool("vv"):
		return log.Debug, true
	case flags.GlobalBool("v"):
		return log.Info, true
	}
	return 0, false
}

func setupLogging(ctx *cli.Context) {
	if level, ok := verbosity(ctx); ok {
		log.SetLevel(level)
		logger.Debugf("log level set to %d", level)
	}
}
