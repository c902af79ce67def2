// main is the entry point for the timelapse CLI.
package main

import (
	"github.com/huangsam/timelapse/cmd"
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseCaching()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Cannot stop profiling", perr)
	}
	if err != nil {
		contract.LogFatal("Cannot run command", err)
	}
}
