package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-command/dispatcher"

	cmsmaps "github.com/goliatone/go-cms-maps"
)

var moduleBuilder = cmsmaps.New

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("mapsrender: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mapsrender", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file (defaults apply when empty)")
	pagesDir := fs.String("pages", "pages", "Path to the wiki page root")
	pagePath := fs.String("page", "", "Render a single page to stdout, relative to the page root")
	directory := fs.String("dir", ".", "Directory to render, relative to the page root")
	outputDir := fs.String("out", "public", "Directory receiving the rendered HTML files")
	recursive := fs.Bool("recursive", true, "Descend into sub directories when rendering a directory")
	fragment := fs.Bool("fragment", false, "Write only the page body when rendering a single page")
	dryRun := fs.Bool("dry-run", false, "Render pages without writing files")
	verbose := fs.Bool("verbose", false, "Log command execution through go-logger")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := cmsmaps.DefaultConfig()
	if *configPath != "" {
		loaded, err := cmsmaps.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *verbose {
		cfg.Features.Logger = true
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Level = "debug"
	}

	module, err := moduleBuilder(cfg, cmsmaps.WithPagesPath(*pagesDir))
	if err != nil {
		return fmt.Errorf("build module: %w", err)
	}
	handlers, err := module.RegisterCommands(nil)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	ctx := context.Background()

	if *pagePath != "" {
		sub := dispatcher.SubscribeCommand(handlers.Page)
		defer sub.Unsubscribe()

		return dispatcher.Dispatch(ctx, cmsmaps.RenderPageCommand{
			Path:     *pagePath,
			Fragment: *fragment,
			Output:   stdout,
		})
	}

	sub := dispatcher.SubscribeCommand(handlers.Site)
	defer sub.Unsubscribe()

	if err := dispatcher.Dispatch(ctx, cmsmaps.RenderSiteCommand{
		Directory: *directory,
		OutputDir: *outputDir,
		Recursive: recursive,
		DryRun:    *dryRun,
	}); err != nil {
		return fmt.Errorf("render %s: %w", *directory, err)
	}

	if *dryRun {
		fmt.Fprintf(stdout, "rendered %s (dry run)\n", *directory)
		return nil
	}
	fmt.Fprintf(stdout, "rendered %s into %s\n", *directory, *outputDir)
	return nil
}
