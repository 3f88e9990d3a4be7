package server

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thinkspaces/thinkspaces"
)

const (
	maxSpaceName     = 100
	maxArtifactTitle = 150
	maxAgentName     = 100
	maxAgentModel    = 100
	maxAgentProvider = 50
)

func required(field, v string, limit int) error {
	if strings.TrimSpace(v) == "" {
		return &thinkspaces.ErrInvalidRequest{Field: field, Message: "must not be empty"}
	}
	return maxLen(field, v, limit)
}

func maxLen(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return &thinkspaces.ErrInvalidRequest{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", limit),
		}
	}
	return nil
}

// optional validates a partial-update field when present.
func optional(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	return required(field, *v, limit)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
