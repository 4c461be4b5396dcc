package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atinyakov/PassGuard/internal/command"
	"github.com/atinyakov/PassGuard/internal/config"
	"github.com/atinyakov/PassGuard/internal/models"
)

const shellHelp = `Available commands:
  register <user>     create an account and sign in
  signin <user>       sign in
  signout             sign out
  unregister <user>   delete your own account
  add <url>           store a password for url
  list                list your stored entries
  show <id>           print the password of an entry
  delete <id>         delete an entry
  help                show this help
  exit                leave the shell`

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sh := newShell(a.dispatcher, cmd.InOrStdin(), cmd.OutOrStdout())
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				sh.readSecret = terminalSecret(f, cmd.ErrOrStderr())
			}
			return sh.run(cmd.Context())
		},
	}
}

// shell is the interactive front end over a dispatcher.
type shell struct {
	d       *command.Dispatcher
	scanner *bufio.Scanner
	out     io.Writer
	// readSecret prompts for a password. It defaults to reading the next
	// input line so that scripted input works.
	readSecret func(prompt string) (string, error)
}

func newShell(d *command.Dispatcher, in io.Reader, out io.Writer) *shell {
	sh := &shell{d: d, scanner: bufio.NewScanner(in), out: out}
	sh.readSecret = sh.nextLine
	return sh
}

// terminalSecret reads a password from a terminal without echo.
func terminalSecret(in *os.File, prompts io.Writer) func(string) (string, error) {
	return func(prompt string) (string, error) {
		fmt.Fprint(prompts, prompt)
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(prompts)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func (sh *shell) nextLine(prompt string) (string, error) {
	fmt.Fprint(sh.out, prompt)
	if !sh.scanner.Scan() {
		if err := sh.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(sh.scanner.Text(), "\r"), nil
}

// run executes commands until exit or end of input.
func (sh *shell) run(ctx context.Context) error {
	for {
		fmt.Fprint(sh.out, "passguard> ")
		if !sh.scanner.Scan() {
			fmt.Fprintln(sh.out)
			return sh.scanner.Err()
		}
		args := strings.Fields(sh.scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(sh.out, "Bye")
			return nil
		}
		if err := sh.exec(ctx, args[0], args[1:]); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			errColor.Fprintf(sh.out, "%s: %v\n", models.Kind(err), err)
		}
	}
}

// arg returns args[0] or an invalid input error carrying usage.
func arg(args []string, usage string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("%w: usage: %s", models.ErrInvalidInput, usage)
	}
	return args[0], nil
}

func (sh *shell) exec(ctx context.Context, name string, args []string) error {
	switch name {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
		return nil

	case "register", "signin":
		user, err := arg(args, name+" <user>")
		if err != nil {
			return err
		}
		secret, err := sh.readSecret("Password: ")
		if err != nil {
			return err
		}
		method := command.MethodSignIn
		if name == "register" {
			method = command.MethodCreateUser
		}
		res, err := sh.d.Dispatch(ctx, command.Request{Method: method, Params: []string{user, secret}})
		if err != nil {
			return err
		}
		okColor.Fprintf(sh.out, "Signed in as %s\n", res.(command.UserResult).Username)

	case "signout":
		if _, err := sh.d.Dispatch(ctx, command.Request{Method: command.MethodSignOut}); err != nil {
			return err
		}
		okColor.Fprintln(sh.out, "Signed out")

	case "unregister":
		user, err := arg(args, "unregister <user>")
		if err != nil {
			return err
		}
		if _, err := sh.d.Dispatch(ctx, command.Request{Method: command.MethodDeleteUser, Params: []string{user}}); err != nil {
			return err
		}
		okColor.Fprintf(sh.out, "Account %s deleted\n", user)

	case "add":
		location, err := arg(args, "add <url>")
		if err != nil {
			return err
		}
		secret, err := sh.readSecret("Password: ")
		if err != nil {
			return err
		}
		req := command.Request{Method: command.MethodCreatePassword, Params: []string{location, secret}}
		if _, err := sh.d.Dispatch(ctx, req); err != nil {
			return err
		}
		okColor.Fprintf(sh.out, "Password for %s saved\n", location)

	case "list":
		res, err := sh.d.Dispatch(ctx, command.Request{Method: command.MethodGetPasswords})
		if err != nil {
			return err
		}
		entries := res.([]models.SecretEntry)
		if len(entries) == 0 {
			infoColor.Fprintln(sh.out, "No entries")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(sh.out, "%s  %s\n", infoColor.Sprint(e.ID), e.Location)
		}

	case "show":
		id, err := arg(args, "show <id>")
		if err != nil {
			return err
		}
		res, err := sh.d.Dispatch(ctx, command.Request{Method: command.MethodDecrypt, Params: []string{id}})
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, res.(string))

	case "delete":
		id, err := arg(args, "delete <id>")
		if err != nil {
			return err
		}
		if _, err := sh.d.Dispatch(ctx, command.Request{Method: command.MethodDeletePassword, Params: []string{id}}); err != nil {
			return err
		}
		okColor.Fprintln(sh.out, "Entry deleted")

	default:
		infoColor.Fprintln(sh.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}
