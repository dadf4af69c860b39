package remote

import "fmt"

// DownloadMode controls when S3ToLocal actually transfers a file that may
// already exist locally.
type DownloadMode int

const (
	// AlwaysDownload transfers even when the destination exists. Not valid
	// for directory syncs.
	AlwaysDownload DownloadMode = iota
	// FileDoesNotExist transfers only when the destination is absent. Not
	// valid for directory syncs.
	FileDoesNotExist
	// SizeOnly skips the transfer when the destination exists with the same
	// size as the remote object.
	SizeOnly
	// SizeAndTimestamp skips the transfer when the destination exists with
	// the same size and the same modification time as the remote object.
	SizeAndTimestamp
	// NeverDownload only maps the S3 path to its local location.
	NeverDownload
)

var modeNames = map[DownloadMode]string{
	AlwaysDownload:   "always",
	FileDoesNotExist: "if-not-exists",
	SizeOnly:         "size-only",
	SizeAndTimestamp: "size-and-timestamp",
	NeverDownload:    "never",
}

func (m DownloadMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DownloadMode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m DownloadMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseDownloadMode converts a mode name as accepted on the command line.
func ParseDownloadMode(s string) (DownloadMode, error) {
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("remote: unknown download mode %q", s)
}
