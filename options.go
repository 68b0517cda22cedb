// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"os"

	"github.com/vehicleota/vpkg/log"
)

// Options configures a build or parse call. The zero value is valid; every
// field defaults when left unset.
type Options struct {
	// MaxVehicleSize bounds the size of an input ParseVehiclePackage will
	// accept, checked before any derived structure is allocated. Zero
	// means DefaultMaxVehicleSize.
	MaxVehicleSize uint32

	// Clock supplies the build timestamp for BuildVehiclePackage. Zero
	// means time.Now; tests inject a fixed clock for deterministic output.
	Clock Clock

	// Logger receives one line per build/parse call and one per
	// validation failure. Zero means a Filter over a StdLogger writing to
	// os.Stdout at LevelError.
	Logger log.Logger
}

// helper returns a ready-to-use log.Helper, applying defaults.
func (o *Options) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		base := log.NewStdLogger(os.Stdout)
		return log.NewHelper(log.NewFilter(base, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(o.Logger)
}

// clock returns a ready-to-use Clock, applying defaults.
func (o *Options) clock() Clock {
	if o == nil || o.Clock == nil {
		return defaultClock
	}
	return o.Clock
}

// maxVehicleSize returns the configured maximum, applying defaults.
func (o *Options) maxVehicleSize() uint32 {
	if o == nil || o.MaxVehicleSize == 0 {
		return DefaultMaxVehicleSize
	}
	return o.MaxVehicleSize
}
