// Package logging routes the process logger to a run log file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Setup points the standard logger at stderr and the file at path (created
// or appended). The returned closer restores stderr-only logging.
func Setup(path string) (io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))
	log.SetFlags(log.LstdFlags)
	return &fileCloser{file: f}, nil
}

type fileCloser struct {
	file *os.File
}

func (c *fileCloser) Close() error {
	log.SetOutput(os.Stderr)
	return c.file.Close()
}

// Event writes a single-line JSON event through the standard logger.
// timestamp, level, component and event_type are filled in.
func Event(component, eventType string, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = component
	data["event_type"] = eventType

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[%s] Failed to marshal log event: %v", component, err)
		return
	}

	log.Println(string(jsonData))
}
