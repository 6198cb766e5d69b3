package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - migrate:       Create or update the schema and seed shop settings
// - set-points:    Overwrite a user's balance, creating the user when missing
// - allow:         Grant a handle (or every user) access to a shop
// - export-orders: Write orders as CSV to a file or stdout

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runSubcommand(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context, name string, args []string) error {
	switch name {
	case "migrate":
		return handleMigrate(ctx, args)
	case "set-points":
		return handleSetPoints(ctx, args)
	case "allow":
		return handleAllow(ctx, args)
	case "export-orders":
		return handleExportOrders(ctx, args)
	case "help", "-h", "--help":
		printUsage()

		return nil
	default:
		printUsage()

		return errors.Errorf("unknown subcommand %q", name)
	}
}

func handleMigrate(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse migrate flags")
	}

	// Starting the app runs the migration hook.
	return withApp(ctx, func(*app) error {
		fmt.Println("Schema is up to date")

		return nil
	})
}

func handleSetPoints(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("set-points", flag.ExitOnError)
	handle := cmd.String("handle", "", "Telegram handle, with or without @")
	points := cmd.Int("points", 0, "New balance")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse set-points flags")
	}
	if *handle == "" {
		return errors.New("-handle is required")
	}

	return withApp(ctx, func(a *app) error {
		user, err := a.admin.SetPoints(ctx, *handle, *points)
		if err != nil {
			return err
		}
		fmt.Printf("%s now has %d points\n", user.Handle, user.Points)

		return nil
	})
}

func handleAllow(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("allow", flag.ExitOnError)
	handle := cmd.String("handle", "", "Telegram handle to grant")
	shop := cmd.String("shop", "", "Shop to grant access to")
	all := cmd.Bool("all", false, "Grant every existing user instead of one handle")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse allow flags")
	}
	if *shop == "" {
		return errors.New("-shop is required")
	}
	if !*all && *handle == "" {
		return errors.New("either -handle or -all is required")
	}

	return withApp(ctx, func(a *app) error {
		if *all {
			added, err := a.admin.AllowAllUsers(ctx, *shop)
			if err != nil {
				return err
			}
			fmt.Printf("Granted %s to %d users\n", *shop, added)

			return nil
		}

		entry, err := a.admin.AddToAllowlist(ctx, *handle, *shop)
		if err != nil {
			return err
		}
		fmt.Printf("%s may enter %s (entry %d)\n", entry.Handle, entry.Shop, entry.ID)

		return nil
	})
}

func printUsage() {
	fmt.Println("Usage: pointshopctl <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate         Create or update the schema and seed shop settings")
	fmt.Println("  set-points      Set a user's balance (-handle, -points)")
	fmt.Println("  allow           Grant shop access (-shop and -handle or -all)")
	fmt.Println("  export-orders   Export orders as CSV (-out, -status, -from, -to)")
	fmt.Println()
	fmt.Println("Configuration is read the same way as the portal (config/config.yaml plus env overrides).")
}
