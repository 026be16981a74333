package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skomarov/boardkeeper/internal/common"
)

// Get fetches, decrypts and prints the room's scene as indented JSON.
func (a *App) Get(ctx context.Context, roomID string, key []byte) error {
	elements, err := a.saver.Load(ctx, roomID, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("room %q does not exist", roomID)
		}
		return err
	}

	out, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(out))
	return nil
}
