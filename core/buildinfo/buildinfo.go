package buildinfo

// Set at link time:
//
//	-X 'github.com/m3rciful/tictactoe-bot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/m3rciful/tictactoe-bot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/tictactoe-bot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the release tag of the binary.
	Version = "dev"
	// Commit reports the source commit.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)
