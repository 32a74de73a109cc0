package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/billing"
	"github.com/darasa-app/darasa/core/catalog"
	"github.com/darasa-app/darasa/core/user"
	"github.com/darasa-app/darasa/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateFunc      = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db   *sqlx.DB
	conf *core.Config

	usrRepo user.Repository
	catRepo catalog.Repository
	payRepo billing.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                    - apply pending database migrations")
	fmt.Println("  addsuperuser -email EMAIL  - create or promote a superuser; the password is prompted next")
	fmt.Println("  seed                       - load demo data for local development")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addSuperuserCmd := flag.NewFlagSet("addsuperuser", flag.ExitOnError)
	addSuperuserEmail := addSuperuserCmd.String("email", "", "The superuser's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		return migrateFunc(cli.db)
	case "addsuperuser":
		if err := addSuperuserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSuperuserEmail == "" {
			addSuperuserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addSuperuserCmd.Usage()
			return errHelp
		}
		return cli.addSuperuser(*addSuperuserEmail, string(pwd))
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}
