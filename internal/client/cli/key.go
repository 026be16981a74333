package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/skomarov/boardkeeper/internal/cryptox"
	"github.com/skomarov/boardkeeper/internal/flagx"
)

// resolveKey produces the room key: the -k hex flag when given, otherwise a
// passphrase prompt. Passphrase keys are derived with the room id as salt,
// so the same passphrase opens the same room from any machine.
func (a *App) resolveKey(args []string, roomID string) ([]byte, error) {
	if hexKey := keyFlag(args); hexKey != "" {
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid key: %w", err)
		}
		if len(key) != cryptox.KeySize {
			return nil, fmt.Errorf("invalid key: want %d bytes, got %d", cryptox.KeySize, len(key))
		}
		return key, nil
	}

	passphrase, err := GetPassword(a.out)
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("empty passphrase")
	}
	return cryptox.DeriveKey(passphrase, []byte(roomID)), nil
}

// keyFlag extracts the -k flag value without disturbing other flags.
func keyFlag(args []string) string {
	filtered := flagx.FilterArgs(args, []string{"-k"})
	for i, arg := range filtered {
		if arg == "-k" && i+1 < len(filtered) {
			return filtered[i+1]
		}
	}
	return ""
}
