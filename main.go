package main

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/assetly/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		slog.Error("application exited", "error", err)
		os.Exit(1)
	}
}
