package logger

import (
	"github.com/google/wire"
	"github.com/ncobase/unicourse/version"
)

// ProviderSet is the wire provider set for the logger package
var ProviderSet = wire.NewSet(ProvideLogger)

// ProvideLogger configures the standard logger and stamps every entry with
// the build version.
func ProvideLogger(cfg *Config) (*Logger, func(), error) {
	l := StdLogger()
	cleanup, err := l.Init(cfg)
	if err != nil {
		return nil, nil, err
	}
	l.SetVersion(version.GetVersionInfo().Version)
	return l, cleanup, nil
}
