package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atinyakov/PassGuard/internal/command"
	"github.com/atinyakov/PassGuard/internal/config"
	"github.com/atinyakov/PassGuard/internal/models"
)

const maxRequestSize = 1 << 20

func newPipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipe",
		Short: "Serve JSON requests from stdin, one per line",
		Long: `Pipe reads newline-delimited requests such as

  {"method":"signin","params":["alice","pw1"]}

from stdin and writes one JSON response per line to stdout:

  {"result":{"username":"alice"}}
  {"result":null,"error":{"kind":"NotAuthorized","message":"..."}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return servePipe(cmd.Context(), a.dispatcher, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// servePipe answers every request line from in until EOF.
func servePipe(ctx context.Context, d *command.Dispatcher, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var resp command.Response
		var req command.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			err = fmt.Errorf("%w: malformed request: %v", models.ErrInvalidInput, err)
			resp = command.Response{Error: &command.Failure{Kind: models.Kind(err), Message: err.Error()}}
		} else {
			resp = d.Handle(ctx, req)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}
