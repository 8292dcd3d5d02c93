package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/motodiag/internal/api/client"
)

func NewLoginCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an API session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("Password: ")
			reader := bufio.NewReader(os.Stdin)
			password, err := reader.ReadString('\n')
			if err != nil {
				return err
			}

			token, err := client.Login(username, strings.TrimRight(password, "\r\n"))
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Println("Export the token for the other commands:")
			fmt.Printf("  export MOTODIAG_API_TOKEN=%s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "operator", "Operator username")
	return cmd
}
