// Command listwise is a terminal front end for the listwise service. Each
// subcommand runs state store actions and prints the resulting state.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/dukerupert/listwise/internal/di"
	"github.com/dukerupert/listwise/internal/remote"
	"github.com/dukerupert/listwise/internal/validation"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	injector := di.NewContainer()
	code := execute(injector, os.Args[1], os.Args[2:])
	injector.Shutdown()
	os.Exit(code)
}

func execute(injector do.Injector, name string, args []string) int {
	if name == "help" || name == "-h" || name == "--help" {
		usage(os.Stdout)
		return 0
	}

	h, err := do.Invoke[*di.StateHandle](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listwise: %v\n", err)
		return 1
	}
	rc := do.MustInvoke[*remote.Client](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(h.Store, rc, os.Stdout)
	if err := a.run(ctx, name, args); err != nil {
		var ve *validation.Error
		switch {
		case errors.As(err, &ve):
			fmt.Fprintln(os.Stderr, "listwise: invalid input")
			for field, msg := range ve.Fields {
				fmt.Fprintf(os.Stderr, "  %s %s\n", field, msg)
			}
		case errors.Is(err, errUsage):
		case remote.StatusCode(err) == http.StatusUnauthorized:
			fmt.Fprintln(os.Stderr, "listwise: session expired; run listwise signin")
		default:
			fmt.Fprintf(os.Stderr, "listwise: %v\n", err)
		}
		return 1
	}
	return 0
}
