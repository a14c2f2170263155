package telemetry

import (
	stderrors "errors"
)

var (
	// errSkipped marks a strategy whose trigger condition did not hold.
	errSkipped = stderrors.New("strategy skipped")
	// errNoProvider means the registry has nothing for the query.
	errNoProvider = stderrors.New("no provider")
	// errCommandFailed means the query ran but did not succeed.
	errCommandFailed = stderrors.New("command failed")
	errNoReading     = stderrors.New("no reading")
)
