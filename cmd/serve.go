package cmd

import (
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/janlaff/voxel-engine/asset/reader"
	"github.com/janlaff/voxel-engine/renderer"
	"github.com/janlaff/voxel-engine/scene"
	"github.com/janlaff/voxel-engine/tracer"
	"github.com/rs/cors"
	"github.com/urfave/cli"
)

// Upper bound for frame dimensions requested over http.
const maxServeFrameDim = 4096

// Serve rendered frames of a scene over http.
func ServeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	srv := newFrameServer(sc, renderOptions(ctx))
	addr := ctx.String("addr")
	logger.Noticef("serving %s on http://%s", ctx.Args().First(), addr)
	return http.ListenAndServe(addr, srv.Handler())
}

type frameServer struct {
	scene    *scene.Scene
	defaults renderer.Options

	mu        sync.Mutex
	lastStats renderer.FrameStats
}

func newFrameServer(sc *scene.Scene, defaults renderer.Options) *frameServer {
	return &frameServer{scene: sc, defaults: defaults}
}

// Handler returns the router wrapped with permissive CORS headers so the
// frame endpoint can be embedded by browser viewers.
func (s *frameServer) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/frame.png", s.handleFrame).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/scene", s.handleScene).Methods("GET")
	api.HandleFunc("/trace", s.handleTrace).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func (s *frameServer) handleFrame(w http.ResponseWriter, req *http.Request) {
	opts := s.defaults
	query := req.URL.Query()

	frameW, err := queryUint(query.Get("width"), opts.FrameW)
	if err != nil {
		http.Error(w, "invalid width", http.StatusBadRequest)
		return
	}
	frameH, err := queryUint(query.Get("height"), opts.FrameH)
	if err != nil {
		http.Error(w, "invalid height", http.StatusBadRequest)
		return
	}
	yaw, err := queryFloat(query.Get("yaw"))
	if err != nil {
		http.Error(w, "invalid yaw", http.StatusBadRequest)
		return
	}
	pitch, err := queryFloat(query.Get("pitch"))
	if err != nil {
		http.Error(w, "invalid pitch", http.StatusBadRequest)
		return
	}
	if frameW == 0 || frameH == 0 || frameW > maxServeFrameDim || frameH > maxServeFrameDim {
		http.Error(w, renderer.ErrInvalidFrameSize.Error(), http.StatusBadRequest)
		return
	}
	opts.FrameW, opts.FrameH = frameW, frameH

	// Each request orbits its own copy of the scene camera.
	camera := *s.scene.Camera
	camera.SetupProjection(float32(frameW) / float32(frameH))
	camera.Orbit(degToRad(yaw), degToRad(pitch))

	r, err := renderer.NewDefault(s.scene.Octree, camera.Inverse(), renderer.NewPerfectScheduler(), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	frame, err := r.Render(req.Context())
	if err != nil {
		logger.Warningf("frame request aborted: %s", err.Error())
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	s.lastStats = r.Stats()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/png")
	if err = png.Encode(w, frame); err != nil {
		logger.Errorf("could not encode frame: %s", err.Error())
	}
}

func (s *frameServer) handleStats(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	stats := s.lastStats
	s.mu.Unlock()

	blocks := make([]map[string]interface{}, 0, len(stats.Blocks))
	for _, block := range stats.Blocks {
		blocks = append(blocks, map[string]interface{}{
			"worker":       block.Worker,
			"blockY":       block.BlockY,
			"blockH":       block.BlockH,
			"rays":         block.Rays,
			"hits":         block.Hits,
			"iterations":   block.Iterations,
			"renderTimeMs": float64(block.RenderTime.Microseconds()) / 1000,
		})
	}
	writeJSON(w, map[string]interface{}{
		"blocks":       blocks,
		"renderTimeMs": float64(stats.RenderTime.Microseconds()) / 1000,
	})
}

func (s *frameServer) handleScene(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, s.scene.Stats())
}

func (s *frameServer) handleTrace(w http.ResponseWriter, req *http.Request) {
	origin, err := parseVec3(req.URL.Query().Get("origin"))
	if err != nil {
		http.Error(w, "invalid origin: "+err.Error(), http.StatusBadRequest)
		return
	}
	dir, err := parseVec3(req.URL.Query().Get("dir"))
	if err != nil {
		http.Error(w, "invalid dir: "+err.Error(), http.StatusBadRequest)
		return
	}

	ray := tracer.Ray{Origin: origin, Direction: tracer.ClampDirection(dir)}
	writeJSON(w, map[string]interface{}{
		"esvo":      resultJSON(tracer.Trace(ray, s.scene.Octree)),
		"reference": resultJSON(tracer.TraceReference(ray, s.scene.Octree)),
	})
}

func resultJSON(res tracer.Result) map[string]interface{} {
	out := map[string]interface{}{
		"hit":        res.Hit,
		"iterations": res.Iterations,
	}
	if res.Hit {
		out["node"] = res.Node
		out["octant"] = res.Octant
		out["t"] = res.T
		out["position"] = res.Position[:]
		out["size"] = res.Size
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("could not encode response: %s", err.Error())
	}
}

func queryUint(v string, def uint32) (uint32, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	return uint32(n), err
}

func queryFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
