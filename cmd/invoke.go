package main

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/action-router/config"
	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/router"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newInvokeCmd(opts *rootOptions) *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one invocation and print its envelope",
		Long: `Reads an invocation event as JSON from --event, or from stdin when the flag
is omitted or "-", runs it against the configured backend, and prints the
response envelope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readEvent(cmd.InOrStdin(), eventPath)
			if err != nil {
				return err
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			out, err := runInvoke(ctx, cfg, data, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "", "path to the invocation event JSON (default stdin)")

	return cmd
}

func readEvent(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	return data, nil
}

// runInvoke decodes one event, routes it, and returns the indented envelope.
// Logs go to logOut so the envelope is the only output.
func runInvoke(ctx context.Context, cfg *config.Config, event []byte, logOut io.Writer) ([]byte, error) {
	inv, err := action.DecodeInvocation(event)
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg, logOut)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	setup, err := initializeBackend(ctx, cfg, log, nil, false)
	if err != nil {
		return nil, err
	}

	r, err := router.NewDefault(setup.collaborator, cfg.Backend.DirectorySource, router.WithLogger(log))
	if err != nil {
		return nil, err
	}

	out, err := json.MarshalIndent(r.Invoke(ctx, inv), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return out, nil
}
