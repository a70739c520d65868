package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	// Create a channel to receive console messages
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-stream-123", messageChan)

	logger.Printf("%s\n", "Frame 1/4 at t=0.000")

	select {
	case msg := <-messageChan:
		if msg.Message != "Frame 1/4 at t=0.000" {
			t.Errorf("Expected trimmed message, got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if msg.Type != "console" {
			t.Errorf("Expected type 'console', got '%s'", msg.Type)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-stream-456", messageChan)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Printf("%s\n", msg)
	}

	for i, expected := range messages {
		select {
		case msg := <-messageChan:
			if msg.Message != expected {
				t.Errorf("Message %d: expected '%s', got '%s'", i, expected, msg.Message)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}
}

func TestWebLogger_Levels(t *testing.T) {
	tests := []struct {
		message string
		level   string
	}{
		{"Pass 1/3 complete", "info"},
		{"Warning: texture is large", "warning"},
		{"Disk texture unavailable, using procedural pattern: missing", "warning"},
		{"Error encoding frame", "error"},
	}

	messageChan := make(chan ConsoleMessage, len(tests))
	logger := NewWebLogger("test-levels", messageChan)
	for _, tt := range tests {
		logger.Printf("%s\n", tt.message)
		msg := <-messageChan
		if msg.Level != tt.level {
			t.Errorf("level for %q = %q, expected %q", tt.message, msg.Level, tt.level)
		}
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-stream-789", messageChan)

	logger.Printf("Message 1\n")

	// These must not block even though the channel is full
	logger.Printf("Message 2\n")
	logger.Printf("Message 3\n")

	if got := len(messageChan); got != 1 {
		t.Errorf("Expected 1 buffered message, got %d", got)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("test-stream-nil", nil)

	// This should not panic
	logger.Printf("Test message with nil channel\n")
}

func TestConsoleMessage_JSONSerialization(t *testing.T) {
	msg := ConsoleMessage{
		Type:      "console",
		Message:   "Loaded disk texture",
		Timestamp: time.Now(),
		Level:     "info",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["type"] != "console" || decoded["message"] != "Loaded disk texture" || decoded["level"] != "info" {
		t.Errorf("unexpected JSON: %s", data)
	}
}
