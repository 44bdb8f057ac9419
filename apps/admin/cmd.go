package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	"github.com/coursecatalog/backend/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrSvc     *user.Service
	catSvc     *category.Service
	revSvc     *review.Service
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Course catalog administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.migrateCommand(),
		cli.addUserCommand(),
		cli.resetPasswordCommand(),
		cli.addCategoryCommand(),
		cli.seedReviewsCommand(),
	)
	return root
}

// run executes the command line args, program name included.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err == nil && cmd == root {
		return errHelp
	}
	return err
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	fmt.Fprintf(cli.out, format, args...)
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword(prompt string) (string, error) {
	cli.printf("%s", prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return "", pkgerrors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) promptNewPassword() (pwd, confirm string, err error) {
	if pwd, err = cli.promptPassword("Enter password:"); err != nil {
		return "", "", err
	}
	if pwd == "" {
		return "", "", errHelp
	}
	if confirm, err = cli.promptPassword("Confirm password:"); err != nil {
		return "", "", err
	}
	return pwd, confirm, nil
}

// describe turns validation errors into one line per field.
func (cli *commandLine) describe(err error) error {
	var msgs []string
	switch origErr := pkgerrors.Cause(err).(type) {
	case validator.ValidationErrors:
		for _, vErr := range origErr {
			msgs = append(msgs, vErr.Field()+": "+vErr.Translate(cli.translator))
		}
	case *core.ValidationError:
		for _, fErr := range origErr.Fields {
			msgs = append(msgs, fErr.Field+": "+fErr.Error)
		}
		if len(msgs) == 0 {
			return err
		}
	default:
		return err
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "\n"))
}
