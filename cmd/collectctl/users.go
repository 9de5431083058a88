package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bluebuchu/collect-sub000/internal/app"
	"github.com/bluebuchu/collect-sub000/internal/store"
)

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account maintenance",
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete an account with its sentences, likes and communities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				svcs, err := app.NewServices(ctx, c.cfg, c.logger, st)
				if err != nil {
					return err
				}
				u, err := svcs.Auth.DeleteAccount(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "deleted user %d (%s)\n", u.ID, u.Nickname)
				return nil
			})
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")

	setPassword := &cobra.Command{
		Use:   "set-password <email>",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.readPassword("New password: ")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				svcs, err := app.NewServices(ctx, c.cfg, c.logger, st)
				if err != nil {
					return err
				}
				if err := svcs.Auth.SetPassword(ctx, args[0], pw); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "password updated for %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(del, setPassword)
	return cmd
}

// promptPassword reads without echo on a terminal and falls back to a
// plain line read when stdin is piped.
func (c *cli) promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if c.in == os.Stdin && term.IsTerminal(fd) {
		fmt.Fprint(c.out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
