// cmd/opskit/main.go
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sjatkinson/opskit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(os.Args[1:], cli.Config{
		AppName: "opskit",
		Version: "0.1.0-dev",
		Ctx:     ctx,
	})
	stop()
	os.Exit(code)
}
