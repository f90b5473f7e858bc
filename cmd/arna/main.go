package main

import (
	"log"
	"os"

	"github.com/alecthomas/kong"

	"arna/internal/config"
)

func main() {
	cli := new(CLI)
	ctx := kong.Parse(
		cli,
		kong.Name("arna"),
		kong.Description("Plan program structure as nested functions and generate code from it."),
		kong.UsageOnError(),
	)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cli.apply(cfg)
	err = ctx.Run(&runtime{cfg: cfg, out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
