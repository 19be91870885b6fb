package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/zecko/internal/session"
)

func (a *app) loginCmd() *cobra.Command {
	var creds session.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email or username",
		Example: `  zecko login --user a@b.com --password secret
  zecko login --user alice --password secret --transport cookie`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.manager.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), "Logged in", res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Identifier, "user", "u", "", "email or username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req session.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Example: `  zecko register --email a@b.com --username alice --password secret123
  zecko register --email shop@b.com --username shop --password secret123 \
      --type vendor --business-name "Acme" --country US --phone "415 555 2671"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.manager.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), "Registered", res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Username, "username", "", "username")
	f.StringVar(&req.Password, "password", "", "password, at least 8 characters")
	f.StringVar(&req.UserType, "type", "", "account type: free, business or vendor")
	f.StringVar(&req.BusinessName, "business-name", "", "company name, required for business and vendor")
	f.StringVar(&req.Country, "country", "", "ISO country code of the phone number")
	f.StringVar(&req.Phone, "phone", "", "contact phone")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.manager.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			if err != nil {
				// локальная сессия уже закрыта
				fmt.Fprintf(cmd.ErrOrStderr(), "server logout failed: %v\n", err)
			}
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var showMenu bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			user, err := a.manager.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(out, "Not logged in.")
			} else {
				printUser(out, user)
				fmt.Fprintf(out, "Landing:  %s\n", session.LandingFor(user))
			}
			if showMenu {
				fmt.Fprintln(out, "Menu:")
				for _, it := range session.Menu(user) {
					fmt.Fprintf(out, "  %-10s %s\n", it.Label, it.Path)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showMenu, "menu", false, "print navigation available to the user")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the session verified and report changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			events, cancel := a.manager.Subscribe()
			defer cancel()

			if err := a.manager.Start(cmd.Context()); err != nil {
				return err
			}
			user, _ := a.manager.Store().Peek()
			if user == nil {
				return errors.New("not logged in")
			}
			fmt.Fprintf(out, "Watching session of %s (%s)\n", user.Name(), user.Role())

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev := <-events:
					if ev.User == nil {
						fmt.Fprintf(out, "Session ended: %s\n", ev.Reason)
						return nil
					}
					if ev.Reason == session.ReasonVerified {
						fmt.Fprintf(out, "Session refreshed: %s (%s)\n", ev.User.Name(), ev.User.Role())
					}
				}
			}
		},
	}
}

func printResult(out io.Writer, verb string, res *session.Result) {
	fmt.Fprintf(out, "%s as %s\n", verb, res.User.Name())
	printUser(out, res.User)
	fmt.Fprintf(out, "Landing:  %s\n", res.Landing)
}

func printUser(out io.Writer, u *session.User) {
	fmt.Fprintf(out, "ID:       %s\n", u.ID)
	if u.Email != "" {
		fmt.Fprintf(out, "Email:    %s\n", u.Email)
	}
	if u.Username != "" {
		fmt.Fprintf(out, "Username: %s\n", u.Username)
	}
	role := u.Role()
	if u.SuperAdmin {
		role += " (super admin)"
	}
	fmt.Fprintf(out, "Role:     %s\n", role)
	plan := "inactive"
	if u.SubscriptionActive {
		plan = "active"
	}
	fmt.Fprintf(out, "Plan:     %s\n", plan)
}
