package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/grebekit/grebe"
	"github.com/grebekit/grebe/internal/cli"
	"github.com/logrusorgru/aurora/v3"
)

var (
	configPath = flag.String("config", "grebe.yaml", "path to the patch plan file")
	debug      = flag.Bool("debug", false, "print debug output, including skipped patches")
	timeout    = flag.Duration("timeout", 120*time.Second, "time budget for one pass")
)

func createApp() (*cli.App, cli.CloserFunc, error) {
	lg := log.New(os.Stdout, "", log.LstdFlags)
	return cli.NewFromYaml(*configPath, grebe.UseColorLogger(lg, *debug))
}

func run() (err error) {
	app, closer, createErr := createApp()
	if createErr != nil {
		err = createErr
		return
	}

	defer func() {
		if closeErr := closer(); closeErr != nil {
			err = closeErr
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, runErr := app.Run(ctx)
	if runErr != nil {
		err = runErr
		return
	}

	fmt.Println(aurora.Green(fmt.Sprintf("Applied %d patches, now at version %d", len(summary.Applied), summary.FinalVersion)))

	return
}

func version() (err error) {
	app, closer, createErr := createApp()
	if createErr != nil {
		err = createErr
		return
	}

	defer func() {
		if closeErr := closer(); closeErr != nil {
			err = closeErr
		}
	}()

	fmt.Println(app.Version())

	return
}

func main() {
	flag.Parse()

	var err error

	switch strings.ToLower(flag.Arg(0)) {
	case "", "run":
		err = run()
	case "version":
		err = version()
	default:
		err = fmt.Errorf("unknown command [%s], expected run or version", flag.Arg(0))
	}

	if err != nil {
		fmt.Println(aurora.Red(err.Error()))
		os.Exit(1)
	}
}
