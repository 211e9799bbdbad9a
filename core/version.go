package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Version is resolved at startup. A -ldflags value takes precedence over
// the configured one.
var Version string

const NoVersion = "unversioned"

func SetVersion(c *Conf, buildFlag string) {
	switch {
	case buildFlag != "":
		Version = buildFlag
	case c.Version != "":
		Version = c.Version
	default:
		Version = NoVersion
	}
	zap.L().Info(fmt.Sprintf("Version is %s", Version))
}
