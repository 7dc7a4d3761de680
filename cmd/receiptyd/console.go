package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/avelichko/receipty/internal/conversation"
)

// consoleSubmitter is the submitter id assigned to the local console session.
const consoleSubmitter int64 = 0

// runConsole reads commands from stdin and feeds them to the engine as a
// single-submitter conversation. Input forms:
//
//	/start, /help, /add_product   commands
//	photo <path> [batch-key]      submit an image file
//	sel <data>                    a button selection (callback data)
//	anything else                 free text
func runConsole(ctx context.Context, engine *conversation.Engine, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == "/start":
			engine.HandleStart(ctx, consoleSubmitter)
		case line == "/help":
			engine.HandleHelp(ctx, consoleSubmitter)
		case line == "/add_product":
			engine.HandleAddProduct(ctx, consoleSubmitter)
		case strings.HasPrefix(line, "photo "):
			fields := strings.Fields(line)
			photo, err := os.ReadFile(fields[1])
			if err != nil {
				logger.Error("console.photo.read_failed", "path", fields[1], "error", err)
				continue
			}
			batchKey := ""
			if len(fields) > 2 {
				batchKey = fields[2]
			}
			engine.HandlePhoto(ctx, consoleSubmitter, batchKey, photo)
		case strings.HasPrefix(line, "sel "):
			engine.HandleSelection(ctx, consoleSubmitter, strings.TrimSpace(strings.TrimPrefix(line, "sel ")))
		default:
			engine.HandleText(ctx, consoleSubmitter, line)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("console.read_failed", "error", err)
	}
}
