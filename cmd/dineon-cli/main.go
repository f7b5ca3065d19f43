package main

import (
	"context"

	"dineon-backend/cmd/dineon-cli/commands"
	"dineon-backend/lib/serviceutil"
	"dineon-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "dineon-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(serviceutil.SignalContext())
}
