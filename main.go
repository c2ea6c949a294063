// Package main is the entry point for relayplay.
package main

import (
	"github.com/relayplay/relayplay/cmd"
	"github.com/relayplay/relayplay/config"
	"github.com/relayplay/relayplay/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
