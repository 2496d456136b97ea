package memory

import (
	"strings"

	rerr "github.com/recall-oss/recall/internal/errors"
)

// Default limits applied when a caller does not supply one.
// Oversized limits are passed through uncapped; the store may cap them.
const (
	DefaultSearchLimit  = 10
	DefaultHistoryLimit = 50
)

func validateOwnerID(ownerID string) error {
	if ownerID == "" {
		return rerr.New(rerr.CodeValidation, "owner_id required")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return rerr.New(rerr.CodeValidation, "content required")
	}
	return nil
}

// normalizeMetadata guarantees downstream consumers always see a map.
func normalizeMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}

// normalizeLimit resolves a caller-supplied limit: zero means "use the
// default", negative is rejected, anything positive passes through.
func normalizeLimit(limit, def int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 0 {
		return 0, rerr.New(rerr.CodeValidation, "limit must be a positive integer")
	}
	return limit, nil
}

func validateUpdate(fields UpdateFields) error {
	if fields.IsEmpty() {
		return rerr.New(rerr.CodeValidation, "no update fields provided")
	}
	if fields.Content != nil {
		if err := validateContent(*fields.Content); err != nil {
			return err
		}
	}
	return nil
}
