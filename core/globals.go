package core

import "github.com/huangsam/timelapse/internal/outwriter"

// outWriter renders every command result in the configured output mode.
var outWriter = outwriter.NewOutWriter()
