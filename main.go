package main

import (
	"modrinth-mod-checker/cmd"
	"modrinth-mod-checker/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logger.InitLogger()
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
