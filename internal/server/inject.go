package server

import (
	"encoding/json"
	"fmt"
	"strings"

	serrors "github.com/liveserve/liveserve/internal/errors"
)

const (
	// clientMarker guards injection idempotency: a document already
	// carrying it is served unchanged.
	clientMarker = "__liveserve_client"

	configMarker = "__liveserve_config"

	headCloseTag = "</head>"
)

// clientConfig is embedded into every injected page so the browser
// client knows where to connect and which mode the server runs in.
type clientConfig struct {
	WsPath   string `json:"wsPath"`
	DiffMode bool   `json:"diffMode"`
}

// injectLiveClient inserts the live-client script block into an HTML
// document. The block lands before the last </head> occurrence, or at
// the end of the document (preceded by exactly one newline) when no
// closing head tag exists. Injecting twice yields the same output as
// injecting once.
func injectLiveClient(original string, diffMode bool) (string, error) {
	if strings.Contains(original, clientMarker) {
		return original, nil
	}

	cfg, err := json.Marshal(clientConfig{
		WsPath:   wsPath,
		DiffMode: diffMode,
	})
	if err != nil {
		return "", serrors.Internal("encoding live-client config", err)
	}

	snippet := fmt.Sprintf(
		`<script id=%q>window.__LIVESERVE_CONFIG__ = %s;</script><script id=%q defer src=%q></script>`,
		configMarker, cfg, clientMarker, scriptPath)

	if idx := strings.LastIndex(original, headCloseTag); idx >= 0 {
		var b strings.Builder
		b.Grow(len(original) + len(snippet) + 2)
		b.WriteString(original[:idx])
		b.WriteByte('\n')
		b.WriteString(snippet)
		b.WriteByte('\n')
		b.WriteString(original[idx:])
		return b.String(), nil
	}

	result := original
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result + snippet, nil
}
