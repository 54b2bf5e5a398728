package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/liveserve/liveserve/internal/logging"
)

// openBrowser launches the default browser at the given URL. Launch is
// best-effort: failures are logged, never fatal.
func openBrowser(logger logging.Logger, rawURL string) {
	ctx := context.Background()

	// Give the server a moment to accept connections.
	time.Sleep(100 * time.Millisecond)

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		logger.Warn(ctx, err, "refusing to open non-http url", "url", rawURL)
		return
	}

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", rawURL).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	case "darwin":
		err = exec.Command("open", rawURL).Start()
	default:
		err = fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}

	if err != nil {
		logger.Warn(ctx, err, "failed to open browser", "url", rawURL)
	}
}
