// main is the entry point for the dendro CLI.
package main

import (
	"github.com/huangsam/dendro/cmd"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	cmd.SetStoreManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot run dendro", err)
	}
	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Cannot stop profiling", err)
	}
}
