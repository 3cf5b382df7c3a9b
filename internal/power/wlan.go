package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRfkillRoot is where the kernel lists radio kill switches.
const DefaultRfkillRoot = "/sys/class/rfkill"

// BlockWLAN soft-blocks every wlan switch under root and returns how many
// it blocked. The block survives a restart, so later wakes find Wi-Fi
// already off.
func BlockWLAN(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("list rfkill switches: %w", err)
	}

	n := 0
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		typ, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil || strings.TrimSpace(string(typ)) != "wlan" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, "soft"), []byte("1"), 0); err != nil {
			return n, fmt.Errorf("block %s: %w", e.Name(), err)
		}
		n++
	}
	return n, nil
}
