package live

import (
	pathpkg "path"
	"path/filepath"
	"strings"
)

// EventKind is the finite set of raw filesystem-event categories the
// classifier decides over. Watch backends map their native event types
// onto these; the classifier never sees backend types directly.
type EventKind int

const (
	// KindAccess is a pure access notification, never actionable.
	KindAccess EventKind = iota
	// KindCreate is a file or directory creation.
	KindCreate
	// KindModifyData is a content change.
	KindModifyData
	// KindModifyMetadata is a metadata-only change (chmod, mtime touch).
	KindModifyMetadata
	// KindModifyAny is a modification of unspecified nature.
	KindModifyAny
	// KindModifyOther is a backend-specific modification.
	KindModifyOther
	// KindRenameFrom is the old-path half of a move.
	KindRenameFrom
	// KindRenameTo is a rename landing at the new name.
	KindRenameTo
	// KindRenameBoth is a rename carrying both names.
	KindRenameBoth
	// KindRenameAny is a rename whose direction is unknown.
	KindRenameAny
	// KindRemove is a deletion.
	KindRemove
	// KindOther is a backend-specific event outside the categories above.
	KindOther
	// KindAny is an event of unknown kind.
	KindAny
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindCreate:
		return "create"
	case KindModifyData:
		return "modify-data"
	case KindModifyMetadata:
		return "modify-metadata"
	case KindModifyAny:
		return "modify-any"
	case KindModifyOther:
		return "modify-other"
	case KindRenameFrom:
		return "rename-from"
	case KindRenameTo:
		return "rename-to"
	case KindRenameBoth:
		return "rename-both"
	case KindRenameAny:
		return "rename-any"
	case KindRemove:
		return "remove"
	case KindOther:
		return "other"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// RawEvent is one filesystem notification as delivered by the watch
// backend: a kind, the affected paths, and whether the backend lost
// track of state and needs a full rescan.
type RawEvent struct {
	Kind   EventKind
	Paths  []string
	Rescan bool
}

// Classifier is the decision engine mapping raw events to client
// messages. It is a pure function of its two immutable fields and the
// event; it holds no state and is safe for concurrent use.
type Classifier struct {
	// BaseDir is the absolute, canonical serving root.
	BaseDir string
	// DiffMode selects targeted HTML/CSS updates over full reloads.
	DiffMode bool
}

// Classify maps one raw event to zero or more client messages.
//
// Precedence: access and rename-from events are dropped in both modes;
// a rescan forces a reload regardless of mode; with diff mode off every
// surviving event is a reload. In diff mode, affected paths classify by
// extension, diff-safe kinds emit one message per classified path,
// non-diff-safe kinds with classified paths fall back to a single
// reload, and events with no classifiable path reload only when the
// kind signals removal or is otherwise unaccounted for.
func (c *Classifier) Classify(event RawEvent) []Message {
	if ignoredKind(event.Kind) {
		return nil
	}

	if event.Rescan {
		return []Message{Reload()}
	}

	if !c.DiffMode {
		return []Message{Reload()}
	}

	var diffs []Message
	for _, path := range event.Paths {
		if msg, ok := c.classifyPath(path); ok {
			diffs = append(diffs, msg)
		}
	}

	if len(diffs) > 0 {
		if allowsDiff(event.Kind) {
			return diffs
		}
		return []Message{Reload()}
	}

	if reloadsWhenUnclassified(event.Kind) {
		return []Message{Reload()}
	}

	return nil
}

func ignoredKind(kind EventKind) bool {
	return kind == KindAccess || kind == KindRenameFrom
}

// allowsDiff reports whether a kind is safe to communicate as per-path
// diffs instead of a full reload.
func allowsDiff(kind EventKind) bool {
	switch kind {
	case KindCreate, KindModifyData, KindModifyMetadata, KindModifyAny,
		KindRenameTo, KindRenameBoth, KindRenameAny:
		return true
	default:
		return false
	}
}

// reloadsWhenUnclassified reports whether a kind still warrants a full
// reload when none of its paths classified as HTML or CSS. Rename-from
// never reaches here; every other rename kind reloads.
func reloadsWhenUnclassified(kind EventKind) bool {
	switch kind {
	case KindRemove, KindOther, KindAny, KindModifyOther,
		KindRenameTo, KindRenameBoth, KindRenameAny:
		return true
	default:
		return false
	}
}

// classifyPath maps one affected path to a diff message. Paths outside
// the base directory, or with extensions that are neither HTML nor
// CSS, produce nothing.
func (c *Classifier) classifyPath(path string) (Message, bool) {
	normalized := c.normalizeEventPath(path)

	var resource Resource
	switch strings.ToLower(filepath.Ext(normalized)) {
	case ".html", ".htm":
		resource = ResourceHTML
	case ".css":
		resource = ResourceCSS
	default:
		return Message{}, false
	}

	webPath, ok := c.toWebPath(normalized, resource)
	if !ok {
		return Message{}, false
	}

	return Diff(webPath, resource), true
}

// normalizeEventPath resolves an event path to an absolute canonical
// form, falling back to a plain join with the base directory when
// canonicalization fails (the path may have just been deleted).
func (c *Classifier) normalizeEventPath(path string) string {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(c.BaseDir, resolved)
	}

	if canonical, err := filepath.EvalSymlinks(resolved); err == nil {
		return canonical
	}

	return resolved
}

// toWebPath expresses a classified file as a web-rooted path. HTML
// index documents collapse to their parent directory with a trailing
// slash; CSS keeps its literal path. Paths not expressible relative to
// the base directory are dropped rather than emitted malformed.
func (c *Classifier) toWebPath(path string, resource Resource) (string, bool) {
	rel, err := filepath.Rel(c.BaseDir, path)
	if err != nil {
		return "", false
	}

	relSlash := filepath.ToSlash(rel)
	if relSlash == "." {
		return "/", true
	}
	if relSlash == ".." || strings.HasPrefix(relSlash, "../") {
		return "", false
	}

	if resource == ResourceHTML {
		name := pathpkg.Base(relSlash)
		if name == "index.html" || name == "index.htm" {
			dir := pathpkg.Dir(relSlash)
			if dir == "." {
				return "/", true
			}
			return "/" + dir + "/", true
		}
	}

	return "/" + relSlash, true
}
