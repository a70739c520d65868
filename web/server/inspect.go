package server

import (
	"net/http"
	"strconv"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/integrator"
	"github.com/df07/go-blackhole-raymarcher/pkg/renderer"
	"github.com/df07/go-blackhole-raymarcher/pkg/scene"
)

// maxPathPoints bounds the ray path returned by /api/inspect
const maxPathPoints = 64

// InspectResponse describes how the ray through one pixel was integrated
type InspectResponse struct {
	Outcome       string       `json:"outcome"` // "absorbed", "escaped", "opaque" or "exhausted"
	Steps         int          `json:"steps"`
	Transmittance float64      `json:"transmittance"`
	Color         [3]float64   `json:"color"`  // HDR color before tone mapping
	Pixel         [3]float64   `json:"pixel"`  // Tone-mapped display color
	MinRadius     float64      `json:"minRadius"`
	Direction     [3]float64   `json:"direction"` // Final direction
	Path          [][3]float64 `json:"path"`      // Sampled positions along the ray
	Time          float64      `json:"time"`
	Textured      bool         `json:"textured"` // Disk texture was loaded
}

// inspectPixel traces the center of pixel (x, y) and records its path
func inspectPixel(sceneObj *scene.Scene, frame *core.FrameContext, x, y int) InspectResponse {
	camera := renderer.NewCamera(frame.Width, frame.Height, false)
	ndc := camera.NDC(x, y, nil)
	ray := frame.Camera.Ray(ndc)

	marcher := sceneObj.NewMarcher()
	minRadius := ray.Origin.Length()
	stride := max(sceneObj.Integrator.MaxSteps/maxPathPoints, 1)
	path := [][3]float64{toArray(ray.Origin)}

	result := marcher.TraceObserved(ray, frame, func(rec integrator.StepRecord) {
		if r := rec.Pos.Length(); r < minRadius {
			minRadius = r
		}
		if rec.Step%stride == 0 && len(path) < maxPathPoints {
			path = append(path, toArray(rec.Pos))
		}
	})

	return InspectResponse{
		Outcome:       result.Outcome.String(),
		Steps:         result.Steps,
		Transmittance: result.Transmittance,
		Color:         toArray(result.Color),
		Pixel:         toArray(core.ToneMap(result.Color)),
		MinRadius:     minRadius,
		Direction:     toArray(result.Direction),
		Path:          path,
		Time:          frame.Time,
		Textured:      frame.DiskTexture != nil,
	}
}

// handleInspect handles single-ray inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.apply(&sceneObj)

	// Trace against the same texture /api/frame renders with
	driver := s.newDriver(r.Context(), &sceneObj, requestLogger("inspect", sceneObj.Name), true)
	frame := driver.Snapshot(req.Width, req.Height)

	writeJSON(w, http.StatusOK, inspectPixel(&sceneObj, frame, pixelX, pixelY))
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
