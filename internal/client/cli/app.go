// Package cli implements the roomctl command set: ops access to encrypted
// rooms. The room key is supplied as hex or derived from a passphrase and
// never leaves the process.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/skomarov/boardkeeper/internal/client/config"
	"github.com/skomarov/boardkeeper/internal/client/roomsync"
	"github.com/skomarov/boardkeeper/internal/logging"
)

type App struct {
	config *config.Config
	saver  *roomsync.Saver
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	api := roomsync.NewClient(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})
	saver := roomsync.NewSaver(api, roomsync.NewVersionCache(), logger)

	return &App{config: c, saver: saver, out: os.Stdout}, nil
}

const usage = `Usage:
  roomctl [flags] get <roomID>
  roomctl [flags] put <roomID> <scene.json>

Flags:
  -s URL      server base URL
  -k HEX      room key as 64 hex digits (otherwise a passphrase is prompted)
  -c FILE     JSON config file
  -t SECONDS  request timeout
`

// Run dispatches the command named by the first non-flag argument.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := splitCommand(args)

	switch cmd {
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("get: expected <roomID>")
		}
		key, err := a.resolveKey(args, rest[0])
		if err != nil {
			return err
		}
		return a.Get(ctx, rest[0], key)
	case "put":
		if len(rest) != 2 {
			return fmt.Errorf("put: expected <roomID> <scene.json>")
		}
		key, err := a.resolveKey(args, rest[0])
		if err != nil {
			return err
		}
		return a.Put(ctx, rest[0], key, rest[1])
	default:
		fmt.Fprint(a.out, usage)
		if cmd == "" {
			return fmt.Errorf("no command given")
		}
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// splitCommand returns the first argument that does not look like a flag or
// a flag value, plus everything after it.
func splitCommand(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "" {
			continue
		}
		if args[i][0] == '-' {
			// Skip the flag's value unless it is of the -f=v form.
			if i+1 < len(args) && !strings.Contains(args[i], "=") {
				i++
			}
			continue
		}
		return args[i], args[i+1:]
	}
	return "", nil
}
