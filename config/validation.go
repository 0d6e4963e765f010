package config

import (
	"fmt"
	"strings"

	"github.com/grovetools/reqs/errors"
	"github.com/moby/patternmatcher"
)

// Validate checks the semantic rules the schema cannot express.
func (c *Config) Validate() error {
	if c.Editor.WatchDebounceMs < 0 {
		return errors.ConfigInvalid("editor.watch_debounce_ms must not be negative").
			WithDetail("value", c.Editor.WatchDebounceMs)
	}

	for _, p := range c.Ignore {
		if strings.TrimSpace(p) == "" {
			return errors.ConfigInvalid("ignore patterns must not be empty")
		}
	}
	if _, err := patternmatcher.New(c.Ignore); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid ignore pattern in %v", c.Ignore))
	}

	return nil
}
