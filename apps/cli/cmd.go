package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/storage/sessionstore"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotSignedIn = errors.New("not signed in: run `masomo login --email EMAIL` first")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	authn  *auth.Authenticator
	policy *policy.Policy
	out    io.Writer

	useKeyring bool
}

// run executes args, os.Args style (program name first).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "masomo",
		Short:         "Sign in to the Masomo records API from the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.PersistentFlags().BoolVar(&cli.useKeyring, "keyring", false, "keep the session in the OS keyring instead of "+cli.conf.CLI.SessionFile)

	root.AddCommand(cli.loginCmd(), cli.logoutCmd(), cli.whoamiCmd(), cli.navCmd())
	return root
}

func (cli *commandLine) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, "Enter password:")
			pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				_ = cmd.Usage()
				return errHelp
			}

			ctx := cmd.Context()
			store, err := cli.openStore(ctx)
			if err != nil {
				return err
			}
			ident, err := cli.authn.Login(ctx, store, email, string(pwd))
			if err != nil {
				var lErr *auth.LoginError
				if errors.As(err, &lErr) {
					return errors.New(lErr.Message)
				}
				return err
			}
			fmt.Fprintf(out, "Signed in as %s (%s)\n", ident.FullName(), ident.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The account's email")
	return cmd
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := cli.openStore(ctx)
			if err != nil {
				return err
			}
			if err = cli.authn.Logout(ctx, store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (cli *commandLine) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ident, err := cli.identity(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", ident.FullName(), ident.Email, ident.Role)
			return nil
		},
	}
}

func (cli *commandLine) navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "List the pages the signed-in account may open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ident, err := cli.identity(cmd.Context())
			if err != nil {
				return err
			}
			items := cli.policy.NavigationFor(ident.Role)
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), policy.NoPagesMessage)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\n", item.Name, item.Href(ident.Role))
			}
			return w.Flush()
		},
	}
}

func (cli *commandLine) persister() session.Persister {
	if cli.useKeyring {
		return sessionstore.NewKeyringPersister(cli.conf.CLI.KeyringService)
	}
	return sessionstore.NewFilePersister(cli.conf.CLI.SessionFile)
}

func (cli *commandLine) openStore(ctx context.Context) (*session.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store := session.NewStore(cli.persister(), cli.logger)
	if err := store.Restore(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (cli *commandLine) identity(ctx context.Context) (session.Identity, error) {
	store, err := cli.openStore(ctx)
	if err != nil {
		return session.Identity{}, err
	}
	ident, ok := store.Identity()
	if !ok || !store.IsAuthenticated() {
		return session.Identity{}, errNotSignedIn
	}
	return ident, nil
}
