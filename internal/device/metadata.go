package device

import (
	"os"
	"runtime"
	"time"
)

// Metadata is the audit envelope attached to every authenticated remote
// call as the X-Axion-Metadata header. It contains no personally
// identifying information: no username, no IP, no path.
type Metadata struct {
	DeviceID    string `json:"deviceId"`
	Hostname    string `json:"hostname"`
	Platform    string `json:"platform"`
	Arch        string `json:"arch"`
	OSRelease   string `json:"osRelease"`
	GoVersion   string `json:"goVersion"`
	CLIVersion  string `json:"cliVersion"`
	RequestedAt string `json:"requestedAt"`
}

// CurrentMetadata builds a fresh Metadata envelope, stamping a fresh
// ISO-8601 timestamp on every call so replays are visible to the server.
func CurrentMetadata(cliVersion string) (Metadata, error) {
	id, err := ID()
	if err != nil {
		return Metadata{}, err
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return Metadata{
		DeviceID:    id,
		Hostname:    hostname,
		Platform:    runtime.GOOS,
		Arch:        runtime.GOARCH,
		OSRelease:   osRelease(),
		GoVersion:   runtime.Version(),
		CLIVersion:  cliVersion,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
