package model

import "time"

// Embed colors used for moderation log entries.
const (
	ColorWarn    = 0xffff00
	ColorTimeout = 0xffa500
	ColorJail    = 0xff4500
	ColorRemoval = 0xff0000
	ColorRelease = 0x00ff00
	ColorError   = 0x808080
	ColorInfo    = 0x3498db
)

// LogField is one name/value line of a log entry.
type LogField struct {
	Name   string
	Value  string
	Inline bool
}

// LogEntry is a structured moderation log message. Gateways render it however they like.
type LogEntry struct {
	Title       string
	Description string
	Color       int
	Fields      []LogField
	Timestamp   time.Time
}
