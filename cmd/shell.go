package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shellHelp = `Type a command, or:
  :clear-cache  drop cached replies
  :forget       drop this session's conversation
  :help         show this help
  :quit         leave`

func newShellCmd(app *app) *cobra.Command {
	var (
		flags   requestFlags
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Read commands line by line in one conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, err := app.newEngine(ctx)
			if err != nil {
				return err
			}
			eng.Start(ctx)
			defer func() {
				if closeErr := eng.Close(); closeErr != nil {
					app.logger.Warn("close engine", zap.Error(closeErr))
				}
			}()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			scanner := bufio.NewScanner(cmd.InOrStdin())

			for {
				if ctx.Err() != nil {
					return nil
				}
				_, _ = fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					_, _ = fmt.Fprintln(out)
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case ":quit", ":exit", ":q":
					return nil
				case ":help":
					_, _ = fmt.Fprintln(out, shellHelp)
					continue
				case ":clear-cache":
					eng.orchestrator.ClearCache()
					_, _ = fmt.Fprintln(out, "cache cleared")
					continue
				case ":forget":
					req, err := flags.request(line)
					if err != nil {
						_, _ = fmt.Fprintln(errOut, err)
						continue
					}
					key := eng.orchestrator.ForgetSession(req)
					_, _ = fmt.Fprintf(out, "forgot session %s\n", key)
					continue
				}
				if strings.HasPrefix(line, ":") {
					_, _ = fmt.Fprintf(errOut, "unknown shell command %q, try :help\n", line)
					continue
				}

				req, err := flags.request(line)
				if err != nil {
					_, _ = fmt.Fprintln(errOut, err)
					continue
				}

				result, err := eng.orchestrator.Interpret(ctx, req)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					_, _ = fmt.Fprintln(errOut, withGuidance(err))
					continue
				}

				if err := writeResult(cmd, app, result, asJSON, verbose); err != nil {
					return err
				}
			}
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show reasoning and step output")

	return cmd
}
