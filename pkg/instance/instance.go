package instance

import (
	"os"

	"github.com/Devvfong/inventory-management/pkg/env"
)

// GetID identifies this process in logs: INVENTORY_INSTANCE_ID, then the
// hostname, then "local".
func GetID() string {
	if id := env.Get("INVENTORY_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
