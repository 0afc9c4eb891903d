package cli

import (
	"github.com/spf13/cobra"
)

// NewLoginCmd создаёт команду проверки учётных данных.
func NewLoginCmd(envFn func() *Env) *cobra.Command {
	var showToken bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the masking engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()

			sess, err := env.Session(cmd.Context())
			if err != nil {
				return err
			}

			env.Out.Success("Login successful!")

			headers := []string{"USERNAME", "ISSUED_AT"}
			row := []string{sess.Username, formatTime(&sess.IssuedAt)}
			data := map[string]any{"username": sess.Username, "issued_at": sess.IssuedAt}

			if showToken {
				headers = append(headers, "TOKEN")
				row = append(row, sess.Token)
				data["token"] = sess.Token
			}

			env.Out.Print(headers, [][]string{row}, data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showToken, "show-token", false, "Print the authorization token")

	return cmd
}
