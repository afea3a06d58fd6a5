package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newAdminCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin API helpers",
	}

	var cost int
	hashCmd := &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print the bcrypt hash to put in ADMIN_TOKEN_HASH",
		Long:  "Hashes the token given as argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no token given")
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token must not be empty")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
			if err != nil {
				return fmt.Errorf("failed to hash token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}
	hashCmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")

	cmd.AddCommand(hashCmd)
	return cmd
}
