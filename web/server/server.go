package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/renderer"
	"github.com/df07/go-blackhole-raymarcher/pkg/scene"
)

// Parameter limits shared by request parsing and /api/scene-config
const (
	MinDimension  = 16
	MaxDimension  = 2000
	MaxSamples    = 1024
	MaxPasses     = 64
	MaxFPS        = 60
	MaxFrames     = 100000
	MaxTime       = 1e6
	DefaultWidth  = 480
	DefaultHeight = 270
)

// Server handles web requests for the black hole renderer
type Server struct {
	port       int
	numWorkers int
	staticDir  string
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, staticDir: "static/"}
}

// SetWorkers sets the number of render workers per frame (0 = CPU count)
func (s *Server) SetWorkers(n int) {
	s.numWorkers = n
}

// FrameRequest holds the validated parameters shared by all render endpoints
type FrameRequest struct {
	Scene   string  `json:"scene"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Time    float64 `json:"time"`    // Absolute animation time of the first frame
	Samples int     `json:"samples"` // Samples per pixel, 0 = scene default
	Passes  int     `json:"passes"`  // Progressive passes, 0 = scene default
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/stream", s.handleStream)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("Starting web server", "url", "http://localhost"+addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and config scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sampling := sceneObj.Sampling
	response := map[string]interface{}{
		"scene": sceneObj.Name,
		"defaults": map[string]interface{}{
			"width":              sampling.Width,
			"height":             sampling.Height,
			"samplesPerPixel":    sampling.SamplesPerPixel,
			"passes":             sampling.Passes,
			"adaptiveMinSamples": sampling.AdaptiveMinSamples,
			"adaptiveThreshold":  sampling.AdaptiveThreshold,
			"timeStep":           sceneObj.Animation.TimeStep,
			"orbitSpeed":         sceneObj.Animation.OrbitSpeed,
			"spin":               sceneObj.Spin,
			"method":             sceneObj.Integrator.Method.String(),
			"maxSteps":           sceneObj.Integrator.MaxSteps,
			"hasTexture":         sceneObj.TexturePath != "",
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": MinDimension, "max": MaxDimension},
			"height":  map[string]int{"min": MinDimension, "max": MaxDimension},
			"samples": map[string]int{"min": 1, "max": MaxSamples},
			"passes":  map[string]int{"min": 1, "max": MaxPasses},
			"fps":     map[string]int{"min": 1, "max": MaxFPS},
			"frames":  map[string]int{"min": 0, "max": MaxFrames},
			"time":    map[string]float64{"min": 0, "max": MaxTime},
		},
		"config": sceneObj,
	}
	writeJSON(w, http.StatusOK, response)
}

// handleFrame renders a single frame to completion and returns it as PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r.URL.Query())
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

	ctx := r.Context()
	logger := requestLogger("frame", sceneObj.Name)
	driver := s.newDriver(ctx, &sceneObj, logger, true)

	start := time.Now()
	frame := driver.Snapshot(req.Width, req.Height)
	img, stats, err := renderer.RenderFrame(ctx, sceneObj.NewMarcher(), frame,
		sceneObj.ProgressiveConfig(s.numWorkers), sceneObj.RendererSampling(), sceneObj.RendererBloom(), logger)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		writeError(w, http.StatusInternalServerError, "Rendering failed: "+err.Error())
		return
	}

	data, err := encodePNG(img)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error encoding frame: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	w.Header().Set("X-Average-Samples", strconv.FormatFloat(stats.AverageSamples, 'f', 2, 64))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// parseFrameRequest parses the scene, viewport, time and sample parameters
func (s *Server) parseFrameRequest(values url.Values) (*FrameRequest, error) {
	req := &FrameRequest{Scene: values.Get("scene")}

	var err error
	if req.Width, err = parseIntParam(values, "width", DefaultWidth, MinDimension, MaxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", DefaultHeight, MinDimension, MaxDimension); err != nil {
		return nil, err
	}
	if req.Time, err = parseFloatParam(values, "time", -1, 0, MaxTime); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(values, "passes", 0, 1, MaxPasses); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 1280*720 && req.Samples > 64 {
		slog.Warn("Large frame with high samples may render slowly", "width", req.Width, "height", req.Height, "samples", req.Samples)
	}
	return req, nil
}

// apply overrides the scene's sampling and start time with the request
func (req *FrameRequest) apply(s *scene.Scene) {
	s.Sampling.Width = req.Width
	s.Sampling.Height = req.Height
	if req.Samples > 0 {
		s.Sampling.SamplesPerPixel = req.Samples
	}
	if req.Passes > 0 {
		s.Sampling.Passes = req.Passes
	}
	if req.Time >= 0 {
		s.Animation.StartTime = req.Time
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene resolves a listed scene ID; empty selects the default preset
func (s *Server) createScene(sceneName string) (scene.Scene, error) {
	sceneObj, err := scene.ResolveListed(sceneName)
	if err != nil {
		if errors.Is(err, scene.ErrUnknownScene) {
			return scene.Scene{}, fmt.Errorf("Unknown scene: %s", sceneName)
		}
		return scene.Scene{}, err
	}
	return sceneObj, nil
}

// newDriver creates the frame driver for a request. With waitTexture set a
// disk texture is loaded before the first frame, otherwise frames fall back
// to the procedural pattern until it arrives.
func (s *Server) newDriver(ctx context.Context, sceneObj *scene.Scene, logger core.Logger, waitTexture bool) *renderer.FrameDriver {
	if !waitTexture {
		return sceneObj.NewDriver(ctx, logger)
	}
	config := sceneObj.DriverConfig()
	if tex := sceneObj.NewTexture(logger); tex != nil {
		tex.Start(ctx)
		if err := tex.Wait(ctx); err != nil {
			logger.Printf("Warning: rendering without disk texture: %v\n", err)
		}
		config.Textures = tex
	}
	return renderer.NewFrameDriver(config)
}

// requestLogger tags render logs with the endpoint and scene
func requestLogger(endpoint, sceneName string) core.Logger {
	return renderer.NewSlogLogger(slog.Default().With("endpoint", endpoint, "scene", sceneName))
}

// encodePNG converts an image to PNG bytes
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
