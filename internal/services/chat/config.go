// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// Location decides which calendar day a message falls on when date
	// separators are inserted.
	Location *time.Location

	// SeparatorLayout formats the label of a date separator.
	SeparatorLayout string

	// UnknownSenderName is copied into a reply when the target's author no
	// longer has a profile.
	UnknownSenderName string
}

func (c *Config) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	if c.SeparatorLayout == "" {
		return fmt.Errorf("separator_layout is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Location:          time.Local,
		SeparatorLayout:   "02-Jan-2006",
		UnknownSenderName: "Unknown user",
	}
}
