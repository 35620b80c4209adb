package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/bnema/shopvoice/internal/application"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/spf13/cobra"
)

func newCredentialsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage model API keys",
	}

	cmd.AddCommand(
		newCredentialsSetCmd(app),
		newCredentialsRemoveCmd(app),
	)

	return cmd
}

func newCredentialsSetCmd(app *app) *cobra.Command {
	var (
		ref       string
		value     string
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "set <model-id>",
		Short: "Store an API key for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read credential from stdin: %w", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return fmt.Errorf("credential value is empty: pass --value or --stdin")
			}

			id := domain.ModelID(strings.TrimSpace(args[0]))
			if err := app.models.SetCredential(cmd.Context(), application.SetCredentialCommand{
				ID:     id,
				Ref:    ref,
				Secret: value,
			}); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "credential stored for %s\n", id)
			return err
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Credential reference, shared between models (defaults to the model id)")
	cmd.Flags().StringVar(&value, "value", "", "API key")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the API key from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("value", "stdin")

	return cmd
}

func newCredentialsRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model-id>",
		Short: "Detach and delete a model's API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ModelID(strings.TrimSpace(args[0]))
			if err := app.models.RemoveCredential(cmd.Context(), id); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "credential removed for %s\n", id)
			return err
		},
	}
}
