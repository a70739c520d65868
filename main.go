package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/renderer"
	"github.com/df07/go-blackhole-raymarcher/pkg/scene"
)

// watchDebounce coalesces the burst of events editors emit for one save
const watchDebounce = 200 * time.Millisecond

// options holds the parsed command line. Negative numbers mean "use the
// scene's value".
type options struct {
	scene      string
	config     string
	width      int
	height     int
	samples    int
	passes     int
	frames     int
	dt         float64
	time       float64
	bloom      bool
	bloomSet   bool
	workers    int
	out        string
	watch      bool
	dumpConfig string
	help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.help {
		printHelp(stdout, fs)
		return 0
	}

	selected, err := createScene(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.dumpConfig != "" {
		if err := scene.Encode(stdout, selected, scene.Format(opts.dumpConfig)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	logger := renderer.NewDefaultLogger()
	render := func(ctx context.Context, s scene.Scene) error {
		_, err := renderScene(ctx, s, opts, logger)
		return err
	}

	if opts.watch {
		err = watchConfig(ctx, opts.config, func(ctx context.Context) (scene.Scene, error) {
			return createScene(opts)
		}, render, logger)
	} else {
		fmt.Fprintf(stdout, "Rendering scene %q (%dx%d, %d frames)...\n",
			selected.Name, selected.Sampling.Width, selected.Sampling.Height, max(selected.Animation.Frames, 1))
		var written int
		written, err = renderScene(ctx, selected, opts, logger)
		if err == nil {
			fmt.Fprintf(stdout, "Saved %d frames to %s\n", written, createOutputDir(opts.out, selected.Name))
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stdout, "Interrupted")
			return 130
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags parses the command line into options
func parseFlags(args []string, output io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("blackhole", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.scene, "scene", scene.DefaultPreset, "Preset name ("+strings.Join(scene.PresetNames(), ", ")+"), config: listing ID or config file path")
	fs.StringVar(&opts.config, "config", "", "Scene config file (.toml, .yaml or .yml); overrides -scene")
	fs.IntVar(&opts.width, "width", -1, "Image width (default: scene setting)")
	fs.IntVar(&opts.height, "height", -1, "Image height (default: scene setting)")
	fs.IntVar(&opts.samples, "samples", -1, "Maximum samples per pixel (default: scene setting)")
	fs.IntVar(&opts.passes, "passes", -1, "Progressive passes per frame (default: scene setting)")
	fs.IntVar(&opts.frames, "frames", -1, "Number of frames to render (default: scene setting)")
	fs.Float64Var(&opts.dt, "dt", -1, "Seconds of animation time between frames (default: scene setting)")
	fs.Float64Var(&opts.time, "time", -1, "Animation time of the first frame (default: scene setting)")
	fs.BoolVar(&opts.bloom, "bloom", false, "Apply the bloom post-process")
	fs.IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = auto-detect CPU count)")
	fs.StringVar(&opts.out, "out", "output", "Output directory; frames go to <out>/<scene>/frame_NNNN.png")
	fs.BoolVar(&opts.watch, "watch", false, "Re-render whenever the -config file changes")
	fs.StringVar(&opts.dumpConfig, "dump-config", "", "Print the resolved scene as 'toml' or 'yaml' and exit")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "bloom" {
			opts.bloomSet = true
		}
	})

	if opts.watch && opts.config == "" {
		return nil, fs, fmt.Errorf("-watch requires -config")
	}
	switch opts.dumpConfig {
	case "", string(scene.FormatTOML), string(scene.FormatYAML):
	default:
		return nil, fs, fmt.Errorf("-dump-config must be toml or yaml, got %q", opts.dumpConfig)
	}
	return opts, fs, nil
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Black Hole Ray-Marcher")
	fmt.Fprintln(w, "Usage: blackhole [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.BuiltinScenes() {
		fmt.Fprintf(w, "  %-10s - %s\n", info.ID, info.Description)
	}
	if response, err := scene.ListAllScenes(); err == nil {
		for _, group := range response.Groups {
			if group.Name == "Built-in Scenes" {
				continue
			}
			for _, info := range group.Scenes {
				fmt.Fprintf(w, "  %-10s - %s (based on %s)\n", info.ID, info.DisplayName, info.Base)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to <out>/<scene>/frame_NNNN.png")
}

// createScene resolves the selected scene and applies command line overrides
func createScene(opts *options) (scene.Scene, error) {
	var s scene.Scene
	var err error
	if opts.config != "" {
		s, err = scene.LoadFile(opts.config)
	} else {
		s, err = scene.Resolve(opts.scene)
	}
	if err != nil {
		return scene.Scene{}, err
	}

	applyOverrides(&s, opts)
	if err := s.Validate(); err != nil {
		return scene.Scene{}, err
	}
	return s, nil
}

// applyOverrides copies explicitly set flags onto the scene
func applyOverrides(s *scene.Scene, opts *options) {
	if opts.width > 0 {
		s.Sampling.Width = opts.width
	}
	if opts.height > 0 {
		s.Sampling.Height = opts.height
	}
	if opts.samples > 0 {
		s.Sampling.SamplesPerPixel = opts.samples
	}
	if opts.passes > 0 {
		s.Sampling.Passes = opts.passes
	}
	if opts.frames > 0 {
		s.Animation.Frames = opts.frames
	}
	if opts.dt > 0 {
		s.Animation.TimeStep = opts.dt
	}
	if opts.time >= 0 {
		s.Animation.StartTime = opts.time
	}
	if opts.bloomSet {
		s.Bloom.Enabled = opts.bloom
	}
}

// createOutputDir returns <base>/<scene name> with the name made path safe
func createOutputDir(base, sceneName string) string {
	name := strings.ToLower(strings.TrimSpace(sceneName))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "scene"
	}
	if base == "" {
		base = "output"
	}
	return filepath.Join(base, name)
}

// framePath returns the file name of frame index inside dir
func framePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.png", index))
}

// renderScene renders the scene's frame sequence to PNG files and returns how
// many were written
func renderScene(ctx context.Context, s scene.Scene, opts *options, logger core.Logger) (int, error) {
	outputDir := createOutputDir(opts.out, s.Name)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("error creating output directory: %w", err)
	}

	startTime := time.Now()
	seq := renderer.Sequence{
		Driver:      s.NewDriver(ctx, logger),
		Shader:      s.NewMarcher(),
		Width:       s.Sampling.Width,
		Height:      s.Sampling.Height,
		Frames:      s.Animation.Frames,
		TimeStep:    s.Animation.TimeStep,
		Progressive: s.ProgressiveConfig(opts.workers),
		Sampling:    s.RendererSampling(),
		Bloom:       s.RendererBloom(),
		Logger:      logger,
	}

	written := 0
	err := seq.Render(ctx, func(result renderer.FrameResult) error {
		filename := framePath(outputDir, result.Index)
		if err := savePNG(filename, result.Image); err != nil {
			return err
		}
		written++
		return nil
	})
	if err != nil {
		return written, err
	}

	logger.Printf("Rendered %d frames of %s in %v\n", written, s.Name, time.Since(startTime).Round(time.Millisecond))
	return written, nil
}

func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("error saving PNG %s: %w", filename, err)
	}
	return file.Close()
}

// watchConfig renders once, then re-renders whenever path changes until ctx
// is cancelled, and then returns ctx.Err(). A change cancels the render in
// progress. Load errors are logged and the previous render is left in place.
func watchConfig(ctx context.Context, path string, load func(context.Context) (scene.Scene, error),
	render func(context.Context, scene.Scene) error, logger core.Logger) error {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	var (
		wg           sync.WaitGroup
		cancelRender context.CancelFunc = func() {}
	)
	stopRender := func() {
		cancelRender()
		wg.Wait()
	}
	defer stopRender()

	startRender := func() {
		stopRender()
		s, err := load(ctx)
		if err != nil {
			logger.Printf("Not re-rendering, config is invalid: %v\n", err)
			return
		}
		var renderCtx context.Context
		renderCtx, cancelRender = context.WithCancel(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := render(renderCtx, s); err != nil && renderCtx.Err() == nil {
				logger.Printf("Render failed: %v\n", err)
			}
		}()
	}

	startRender()
	logger.Printf("Watching %s for changes\n", path)

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("Watch error: %v\n", err)
		case <-debounce.C:
			logger.Printf("%s changed, re-rendering\n", path)
			startRender()
		}
	}
}
