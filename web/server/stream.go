package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/renderer"
	"github.com/df07/go-blackhole-raymarcher/pkg/scene"
)

const (
	writeTimeout = 10 * time.Second
	defaultFPS   = 24
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// StreamRequest adds playback parameters to a frame request
type StreamRequest struct {
	FrameRequest
	FPS    int `json:"fps"`
	Frames int `json:"frames"` // 0 = until the client disconnects
}

// FrameHeader is sent as a text message right after each binary PNG frame
type FrameHeader struct {
	Type           string  `json:"type"` // "frame"
	Index          int     `json:"index"`
	Time           float64 `json:"time"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	AverageSamples float64 `json:"averageSamples"`
	ElapsedMs      int64   `json:"elapsedMs"`
	Paused         bool    `json:"paused"`
	OrbitSpeed     float64 `json:"orbitSpeed"`
	Textured       bool    `json:"textured"` // Disk texture was available for this frame
}

// StreamCommand is a control message sent by the client
type StreamCommand struct {
	Command string  `json:"command"` // "pause", "resume" or "orbit"
	Value   float64 `json:"value"`   // Orbit speed for "orbit"
}

// statusMessage is a text message without a frame
type statusMessage struct {
	Type    string `json:"type"` // "complete" or "error"
	Message string `json:"message"`
}

// wsMessage is one websocket message. Messages sent in the same batch are
// written back to back.
type wsMessage struct {
	kind int
	data []byte
}

// streamControl applies client commands to the stream's playback state
type streamControl struct {
	driver *renderer.FrameDriver
	paused bool
}

func (c *streamControl) apply(cmd StreamCommand) error {
	switch cmd.Command {
	case "pause":
		c.paused = true
	case "resume":
		c.paused = false
	case "orbit":
		c.driver.SetOrbitSpeed(cmd.Value)
	default:
		return fmt.Errorf("unknown stream command %q", cmd.Command)
	}
	return nil
}

// handleStream renders frames continuously and pushes them over a websocket
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseStreamRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.apply(&sceneObj)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine owns all socket writes
	out := make(chan []wsMessage, 8)
	writerDone := make(chan struct{})
	go s.writeMessages(conn, out, cancel, writerDone)

	send := func(batch ...wsMessage) bool {
		select {
		case out <- batch:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Console forwarding
	consoleChan := make(chan ConsoleMessage, 50)
	logger := NewWebLogger(fmt.Sprintf("stream-%d", time.Now().UnixNano()), consoleChan)
	consoleCtx, stopConsole := context.WithCancel(ctx)
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(consoleCtx, consoleChan, send)
	}()

	commands := make(chan StreamCommand, 8)
	go s.readCommands(ctx, conn, commands, cancel, logger)

	status := s.runStream(ctx, req, &sceneObj, logger, commands, send)

	stopConsole()
	consoleWG.Wait()
	if status != nil {
		if data, err := json.Marshal(status); err == nil {
			send(wsMessage{websocket.TextMessage, data},
				wsMessage{websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, status.Type)})
		}
	}
	close(out)
	<-writerDone
}

// runStream is the render loop. It owns the frame driver and returns the
// final status to report, or nil if the client went away.
func (s *Server) runStream(ctx context.Context, req *StreamRequest, sceneObj *scene.Scene, logger core.Logger,
	commands <-chan StreamCommand, send func(...wsMessage) bool) *statusMessage {

	control := &streamControl{driver: sceneObj.NewDriver(ctx, logger)}
	marcher := sceneObj.NewMarcher()
	progressive := sceneObj.ProgressiveConfig(s.numWorkers)
	sampling := sceneObj.RendererSampling()
	bloom := sceneObj.RendererBloom()

	interval := time.Second / time.Duration(req.FPS)
	dt := 1.0 / float64(req.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	handle := func(cmd StreamCommand) {
		if err := control.apply(cmd); err != nil {
			logger.Printf("Warning: %v\n", err)
		}
	}

	for index := 0; req.Frames == 0 || index < req.Frames; {
		if control.paused {
			select {
			case cmd := <-commands:
				handle(cmd)
				continue
			case <-ctx.Done():
				return nil
			}
		}

		start := time.Now()
		frame := control.driver.Snapshot(req.Width, req.Height)
		img, stats, err := renderer.RenderFrame(ctx, marcher, frame, progressive, sampling, bloom, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &statusMessage{Type: "error", Message: fmt.Sprintf("Rendering failed: %v", err)}
		}

		pngData, err := encodePNG(img)
		if err != nil {
			return &statusMessage{Type: "error", Message: fmt.Sprintf("Error encoding frame: %v", err)}
		}
		header, err := json.Marshal(FrameHeader{
			Type:           "frame",
			Index:          index,
			Time:           frame.Time,
			Width:          req.Width,
			Height:         req.Height,
			AverageSamples: stats.AverageSamples,
			ElapsedMs:      time.Since(start).Milliseconds(),
			Paused:         control.paused,
			OrbitSpeed:     control.driver.OrbitSpeed(),
			Textured:       frame.DiskTexture != nil,
		})
		if err != nil {
			return &statusMessage{Type: "error", Message: err.Error()}
		}
		if !send(wsMessage{websocket.BinaryMessage, pngData}, wsMessage{websocket.TextMessage, header}) {
			return nil
		}

		index++
		control.driver.Advance(dt)

		select {
		case <-ticker.C:
		case cmd := <-commands:
			handle(cmd)
		case <-ctx.Done():
			return nil
		}
	}
	return &statusMessage{Type: "complete", Message: fmt.Sprintf("Streamed %d frames", req.Frames)}
}

// writeMessages writes every batch in order. After a write error it keeps
// draining so senders never block.
func (s *Server) writeMessages(conn *websocket.Conn, out <-chan []wsMessage, cancel context.CancelFunc, done chan<- struct{}) {
	defer close(done)
	failed := false
	for batch := range out {
		if failed {
			continue
		}
		for _, msg := range batch {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(msg.kind, msg.data); err != nil {
				failed = true
				cancel()
				break
			}
		}
	}
}

// readCommands decodes client commands until the connection closes
func (s *Server) readCommands(ctx context.Context, conn *websocket.Conn, commands chan<- StreamCommand, cancel context.CancelFunc, logger core.Logger) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd StreamCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Printf("Warning: ignoring malformed stream command: %v\n", err)
			continue
		}
		select {
		case commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards logger output to the socket
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, send func(...wsMessage) bool) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				continue
			}
			if !send(wsMessage{websocket.TextMessage, data}) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// parseStreamRequest parses frame parameters plus fps and frame count
func (s *Server) parseStreamRequest(r *http.Request) (*StreamRequest, error) {
	values := r.URL.Query()
	frameReq, err := s.parseFrameRequest(values)
	if err != nil {
		return nil, err
	}
	req := &StreamRequest{FrameRequest: *frameReq}
	if req.FPS, err = parseIntParam(values, "fps", defaultFPS, 1, MaxFPS); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(values, "frames", 0, 0, MaxFrames); err != nil {
		return nil, err
	}
	return req, nil
}
