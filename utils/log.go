package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

type DiscordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DiscordEmbed struct {
	Title     string              `json:"title"`
	Color     int                 `json:"color"`
	Fields    []DiscordEmbedField `json:"fields"`
	Timestamp string              `json:"timestamp,omitempty"`
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

// OpsLog reports operational events to the zap logger and, when a webhook URL is
// configured, to a Discord webhook. Delivery failures are logged and never returned
// to callers.
type OpsLog struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewOpsLog builds an OpsLog. An empty webhookURL keeps reports local.
func NewOpsLog(webhookURL string, client *http.Client, logger *zap.Logger) *OpsLog {
	if client == nil {
		client = NewHTTPClient(10 * time.Second)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpsLog{webhookURL: webhookURL, client: client, logger: logger}
}

func (o *OpsLog) Info(module, operation, extraInfo string) {
	o.report(Info, module, operation, extraInfo)
}

func (o *OpsLog) Warn(module, operation, extraInfo string) {
	o.report(Warn, module, operation, extraInfo)
}

func (o *OpsLog) Error(module, operation, extraInfo string) {
	o.report(Error, module, operation, extraInfo)
}

func (o *OpsLog) report(level LogLevel, module, operation, extraInfo string) {
	if o == nil {
		return
	}
	fields := []zap.Field{
		zap.String("module", module),
		zap.String("operation", operation),
		zap.String("detail", extraInfo),
	}
	switch level {
	case Error:
		o.logger.Error("ops event", fields...)
	case Warn:
		o.logger.Warn("ops event", fields...)
	default:
		o.logger.Info("ops event", fields...)
	}

	if o.webhookURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.send(ctx, level, module, operation, extraInfo); err != nil {
		o.logger.Warn("failed to deliver ops log", zap.Error(err))
	}
}

func (o *OpsLog) send(ctx context.Context, level LogLevel, module, operation, extraInfo string) error {
	embed := DiscordEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []DiscordEmbedField{
			{Name: "Module", Value: truncate(module, 1024)},
			{Name: "Operation", Value: truncate(operation, 1024)},
			{Name: "Details", Value: truncate(extraInfo, 1024)},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	payload := DiscordWebhookPayload{
		Embeds: []DiscordEmbed{embed},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}

	return nil
}

func truncate(s string, max int) string {
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
