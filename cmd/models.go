package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/application"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/spf13/cobra"
)

func newModelsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the model ensemble",
	}

	cmd.AddCommand(
		newModelsListCmd(app),
		newModelsSetCmd(app),
		newModelsRemoveCmd(app),
	)

	return cmd
}

func newModelsListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := app.models.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}

			rendered, err := app.modelsRenderer(statuses)
			if err != nil {
				return fmt.Errorf("render models: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newModelsSetCmd(app *app) *cobra.Command {
	var (
		provider string
		model    string
		role     string
		weight   float64
		enabled  bool
		rosters  []string
		baseURL  string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "set <model-id>",
		Short: "Add a model or update the given fields of an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setCmd := application.SetModelCommand{ID: domain.ModelID(strings.TrimSpace(args[0]))}

			flags := cmd.Flags()
			if flags.Changed("provider") {
				p := domain.Provider(strings.ToLower(provider))
				setCmd.Provider = &p
			}
			if flags.Changed("model") {
				setCmd.Model = &model
			}
			if flags.Changed("role") {
				r := domain.ModelRole(strings.ToLower(role))
				setCmd.Role = &r
			}
			if flags.Changed("weight") {
				setCmd.Weight = &weight
			}
			if flags.Changed("enabled") {
				setCmd.Enabled = &enabled
			}
			if flags.Changed("roster") {
				setCmd.Rosters = make([]domain.RosterName, 0, len(rosters))
				for _, roster := range rosters {
					setCmd.Rosters = append(setCmd.Rosters, domain.RosterName(strings.ToLower(strings.TrimSpace(roster))))
				}
			}
			if flags.Changed("base-url") {
				setCmd.BaseURL = &baseURL
			}
			if flags.Changed("timeout") {
				setCmd.Timeout = &timeout
			}

			saved, err := app.models.SetModel(cmd.Context(), setCmd)
			if err != nil {
				return err
			}

			return printModel(cmd.OutOrStdout(), saved)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Model provider: openai, gemini or scripted")
	cmd.Flags().StringVar(&model, "model", "", "Provider-side model name (defaults to the id)")
	cmd.Flags().StringVar(&role, "role", "", "Ensemble role: primary, validator or refiner")
	cmd.Flags().Float64Var(&weight, "weight", 1, "Weight between 0 and 1")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Whether the model takes part in the ensemble")
	cmd.Flags().StringSliceVar(&rosters, "roster", nil, "Rosters the model belongs to: fast, full")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL override")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-call timeout (0 uses the ensemble default)")

	return cmd
}

func newModelsRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model-id>",
		Short: "Remove a model from the ensemble",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ModelID(strings.TrimSpace(args[0]))
			if err := app.models.RemoveModel(cmd.Context(), id); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			return err
		},
	}
}

func printModel(w io.Writer, model domain.ModelConfig) error {
	rosters := make([]string, 0, len(model.Rosters))
	for _, roster := range model.Rosters {
		rosters = append(rosters, string(roster))
	}

	_, err := fmt.Fprintf(w, "%s\t%s\t%s\tweight=%.2f\tenabled=%t\trosters=%s\n",
		model.ID, model.Provider, model.Role, model.Weight, model.Enabled, strings.Join(rosters, ","))
	return err
}
