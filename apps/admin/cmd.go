package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/user"
	"github.com/tutorly/tutorly/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	engine   string
	validate *validator.Validate
	usrSvc   user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a migrations command: up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix")
	fmt.Println("  adduser -subject ID -email EMAIL -name NAME -role parent|teacher [-admin] - create the profile of an authenticated user")
	fmt.Println("  promote -email EMAIL - grant the admin role to a user")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserSubject := addUserCmd.String("subject", "", "The user's subject, as issued by the auth provider.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", user.RoleParent, "The user's role: parent or teacher.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Also grant the admin role.")

	promoteCmd := flag.NewFlagSet("promote", flag.ContinueOnError)
	promoteEmail := promoteCmd.String("email", "", "The user's email.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserSubject == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		nu := user.NewUser{FullName: *addUserName, Role: *addUserRole}
		return cli.addUser(*addUserSubject, *addUserEmail, nu, *addUserAdmin)
	case "promote":
		if err := promoteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *promoteEmail == "" {
			promoteCmd.Usage()
			return errHelp
		}
		return cli.promote(*promoteEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db.DB, cli.engine, args[0], args[1:]...)
}

// addUser creates the profile of an auth subject, for local setups without the signup flow.
func (cli *commandLine) addUser(subject, email string, nu user.NewUser, isAdmin bool) error {
	if err := nu.Validate(cli.validate); err != nil {
		return errors.Wrap(err, "validating user")
	}
	usr, err := cli.usrSvc.Create(context.Background(), subject, email, nu)
	if err != nil {
		return err
	}
	if isAdmin {
		if usr, err = cli.usrSvc.Promote(context.Background(), usr.Email); err != nil {
			return err
		}
	}
	fmt.Printf("user %s created: %s (%s)\n", usr.ID, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) promote(email string) error {
	usr, err := cli.usrSvc.Promote(context.Background(), email)
	if err != nil {
		return err
	}
	fmt.Printf("user %s is now an admin\n", usr.Email)
	return nil
}
