package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/sdir/internal/cli"
	"github.com/temirov/sdir/internal/utils"
)

const loggerInitializationFailedFormat = "failed to initialize logger: %v\n"

// main is the entry point for the sdir command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(zap.NewAtomicLevelAt(zap.InfoLevel))
	if loggerInitializationError != nil {
		fmt.Fprintf(os.Stderr, loggerInitializationFailedFormat, loggerInitializationError)
		os.Exit(cli.ExitUsage)
	}
	applicationExecutionError := cli.Execute(os.Args[1:], cli.Dependencies{Logger: loggerInstance})
	if applicationExecutionError != nil {
		loggerInstance.Error(applicationExecutionError.Error())
	}
	_ = loggerInstance.Sync()
	os.Exit(cli.ExitCode(applicationExecutionError))
}
