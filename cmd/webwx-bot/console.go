// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/webwx/bot"
	"github.com/bureau-foundation/webwx/webwx"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true)
	linkStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// messageSummary is the part of an added message worth logging.
type messageSummary struct {
	MsgID        string `json:"MsgId"`
	MsgType      int    `json:"MsgType"`
	FromUserName string `json:"FromUserName"`
	ToUserName   string `json:"ToUserName"`
	Content      string `json:"Content"`
}

// newConsoleHandler prints login prompts to output and logs sync
// activity.
func newConsoleHandler(output io.Writer, caller *webwx.Caller, logger *slog.Logger) bot.Handler {
	return bot.HandlerFuncs{
		UUID: func(uuid string) {
			fmt.Fprintln(output, promptStyle.Render("Scan the QR code at this address with the phone app:"))
			fmt.Fprintln(output, linkStyle.Render(caller.QRCodeURL(uuid)))
		},
		Scan: func(*webwx.CheckLoginResponse) {
			fmt.Fprintln(output, promptStyle.Render("Scanned. Confirm the login on the phone."))
		},
		Login: func(*webwx.CheckLoginResponse) {
			fmt.Fprintln(output, promptStyle.Render("Logged in."))
		},
		SyncCheck: func(response *webwx.SyncCheckResponse) {
			logger.Debug("sync check", "selector", response.Selector.String())
		},
		Message: func(message json.RawMessage) {
			var summary messageSummary
			if err := json.Unmarshal(message, &summary); err != nil {
				logger.Warn("undecodable message", "error", err, "bytes", len(message))
				return
			}
			logger.Info("message",
				"id", summary.MsgID,
				"type", summary.MsgType,
				"from", summary.FromUserName,
				"to", summary.ToUserName,
				"content", summary.Content,
			)
		},
	}
}
