package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/ArdonToonstra/simplifier-ig/cmd/simplifier-ig/commands"
	"github.com/ArdonToonstra/simplifier-ig/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("simplifier-ig"),
		kong.Description("Validate, assemble and describe implementation guide sources."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	os.Exit(commands.Execute(ctx, &cli))
}
