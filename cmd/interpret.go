package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	resultadapter "github.com/bnema/shopvoice/internal/adapters/render/result"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type requestFlags struct {
	context   []string
	snapshot  string
	sessionID string
}

func (f *requestFlags) register(cmd *cobra.Command, withSnapshot bool) {
	cmd.Flags().StringArrayVar(&f.context, "context", nil, "Page context entry as key=value, repeatable (values may be JSON)")
	cmd.Flags().StringVar(&f.sessionID, "session", "", "Explicit session id for anonymous conversations")
	if withSnapshot {
		cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "Screenshot file: an image, or base64 / data URL text")
	}
}

func (f *requestFlags) request(transcript string) (domain.CommandRequest, error) {
	snapshotCtx, err := parseContext(f.context)
	if err != nil {
		return domain.CommandRequest{}, err
	}

	req := domain.CommandRequest{
		Transcript: transcript,
		Context:    snapshotCtx,
		SessionID:  strings.TrimSpace(f.sessionID),
	}

	if f.snapshot != "" {
		snapshot, err := loadSnapshot(f.snapshot)
		if err != nil {
			return domain.CommandRequest{}, err
		}
		req.Snapshot = snapshot
	}

	return req, nil
}

func newInterpretCmd(app *app) *cobra.Command {
	var (
		flags   requestFlags
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "interpret [command words...]",
		Short: "Plan and carry out one spoken command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(strings.Join(args, " "))
			if err != nil {
				return err
			}

			eng, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := eng.Close(); closeErr != nil {
					app.logger.Warn("close engine", zap.Error(closeErr))
				}
			}()

			var result domain.InterpretResult
			work := func(ctx context.Context) error {
				var interpretErr error
				result, interpretErr = eng.orchestrator.Interpret(ctx, req)
				return interpretErr
			}

			if asJSON {
				err = work(cmd.Context())
			} else {
				err = runWithProgress(cmd.Context(), cmd.ErrOrStderr(), work)
			}
			if err != nil {
				return withGuidance(err)
			}

			return writeResult(cmd, app, result, asJSON, verbose)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show reasoning and step output")

	return cmd
}

func writeResult(cmd *cobra.Command, app *app, result domain.InterpretResult, asJSON, verbose bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	rendered, err := app.resultRenderer(result, resultadapter.RenderOptions{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("render result: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// parseContext reads key=value pairs; a value that is valid JSON keeps its type.
func parseContext(entries []string) (domain.ContextSnapshot, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	out := make(domain.ContextSnapshot, len(entries))
	for _, entry := range entries {
		key, raw, ok := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("context entry %q: expected key=value", entry)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		out[key] = value
	}

	return out, nil
}

func loadSnapshot(path string) (*domain.VisualSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if strings.HasPrefix(mimeType, "image/") {
		return &domain.VisualSnapshot{MIMEType: mimeType, Data: data}, nil
	}

	return domain.DecodeVisualSnapshot(string(bytes.TrimSpace(data)))
}
