// Package share serializes shareable snapshots to a compact transport
// string that fits in a URL fragment, and resolves imported snapshots
// against current state.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"twonest/internal/core"
)

// ErrDecode is returned for any malformed or truncated token. Callers
// treat a decode failure as "ignore", never as fatal.
var ErrDecode = errors.New("malformed share token")

// Encode serializes a snapshot to its transport string. Free-text
// fields may carry arbitrary Unicode; the JSON is percent-escaped
// before the base64 layer so the token survives any transport that
// mangles raw bytes.
func Encode(s core.Snapshot) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	escaped := url.QueryEscape(string(raw))
	return base64.RawURLEncoding.EncodeToString([]byte(escaped)), nil
}

// Decode reverses Encode. Any failure along the way collapses into
// ErrDecode; no partial snapshot is ever returned.
func Decode(token string) (core.Snapshot, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return core.Snapshot{}, ErrDecode
	}
	unescaped, err := url.QueryUnescape(string(raw))
	if err != nil {
		return core.Snapshot{}, ErrDecode
	}
	var s core.Snapshot
	if err := json.Unmarshal([]byte(unescaped), &s); err != nil {
		return core.Snapshot{}, ErrDecode
	}
	return s, nil
}

// Replace discards current state and adopts the imported snapshot in full.
func Replace(_, imported core.Snapshot) core.Snapshot {
	return imported
}

// Merge appends imported transactions and goals after the current ones
// and overwrites budgets/settings wholesale when the import carries
// them. There is no deduplication by id: importing the same token twice
// duplicates entries, which is the documented behavior.
func Merge(current, imported core.Snapshot) core.Snapshot {
	out := core.Snapshot{
		Transactions: append(append([]core.Transaction(nil), current.Transactions...), imported.Transactions...),
		Goals:        append(append([]core.Goal(nil), current.Goals...), imported.Goals...),
		Budgets:      current.Budgets,
		Settings:     current.Settings,
	}
	if imported.Budgets != nil {
		out.Budgets = imported.Budgets
	}
	if imported.Settings != nil {
		out.Settings = imported.Settings
	}
	return out
}
