package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// VersionInfo handles the /version endpoint. Only the version string is exposed.
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
