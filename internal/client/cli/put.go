package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/skomarov/boardkeeper/internal/scene"
)

// Put reads a scene file and runs the reconcile-save cycle against the room:
// elements already stored remotely at newer versions win, everything else is
// merged in.
func (a *App) Put(ctx context.Context, roomID string, key []byte, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	elements, err := scene.DecodeElements(data)
	if err != nil {
		return err
	}

	merged, err := a.saver.Save(ctx, "roomctl", roomID, key, elements)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "saved room %q: %d elements, scene version %d\n",
		roomID, len(merged), scene.Version(merged))
	return nil
}
