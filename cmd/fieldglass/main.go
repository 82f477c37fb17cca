// Command fieldglass renders a real-time particle-physics simulation
// to the terminal: a fixed-capacity particle store advanced each tick
// by sim.World.Step and painted into a fb.Framebuffer flushed as
// truecolor ANSI escapes.
//
// Grounded on main.go's flag-driven headless/graphics split (here,
// "headless" becomes --no-render, since the terminal renderer has no
// external-library dependency to skip) and on game/logging.go's
// stride-based perf/state logging cadence.
package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/pthm-cable/fieldglass/analytics"
	"github.com/pthm-cable/fieldglass/camera"
	"github.com/pthm-cable/fieldglass/collide"
	"github.com/pthm-cable/fieldglass/config"
	"github.com/pthm-cable/fieldglass/fb"
	"github.com/pthm-cable/fieldglass/field"
	"github.com/pthm-cable/fieldglass/integrate"
	"github.com/pthm-cable/fieldglass/record"
	"github.com/pthm-cable/fieldglass/sim"
	"github.com/pthm-cable/fieldglass/simerr"
	"github.com/pthm-cable/fieldglass/sysmetrics"
	"github.com/pthm-cable/fieldglass/telemetry"
	"github.com/pthm-cable/fieldglass/wind"
)

var (
	configPath     = flag.String("config", "", "path to a YAML config overriding the embedded defaults")
	maxTicks       = flag.Int("max-ticks", 0, "stop after N ticks (0 = run forever)")
	logInterval    = flag.Int("log", 0, "log window stats every N ticks (0 = use telemetry.export_interval; disabled when that is also 0)")
	noRender       = flag.Bool("no-render", false, "run the simulation without drawing to the terminal")
	sourceType     = flag.String("source", "", "record source type to seed particles from: csv, json, sysmetrics (empty = none)")
	sourcePath     = flag.String("source-path", "", "path passed to the record source's Init (ignored by sysmetrics)")
	windGust       = flag.Float64("wind-gust", 0, "amplitude of a simplex-noise gust layered on top of the configured wind (0 = disabled)")
	windSpeed      = flag.Float64("wind-gust-speed", 0.5, "how quickly the wind gust evolves per simulated second")
	camZoom        = flag.Float64("zoom", 1.0, "initial camera zoom (1.0 = one world unit per cell)")
	camX           = flag.Float64("cam-x", -1, "initial camera center X in world coordinates (-1 = world center)")
	camY           = flag.Float64("cam-y", -1, "initial camera center Y in world coordinates (-1 = world center)")
	detectOutliers = flag.Bool("detect-outliers", false, "flag speed outliers in each telemetry window via z-score")
	outlierZ       = flag.Float64("outlier-z", 3.0, "z-score threshold used by --detect-outliers")
)

func main() {
	flag.Parse()

	config.MustInit(*configPath)
	cfg := config.Cfg()

	world, err := newWorld(cfg)
	if err != nil {
		slog.Error("failed to build simulation world", "err", err)
		os.Exit(1)
	}

	errStats := simerr.NewStats()
	world.Errs = errStats

	if *sourceType != "" {
		if err := seedFromSource(world, cfg, *sourceType, *sourcePath, errStats); err != nil {
			slog.Error("failed to seed particles from record source", "source", *sourceType, "err", err)
			os.Exit(1)
		}
	}

	var framebuffer *fb.Framebuffer
	var cam *camera.Camera
	var restoreTerm func()
	if !*noRender {
		framebuffer, err = fb.New(cfg.Render.Width, cfg.Render.Height)
		if err != nil {
			slog.Error("failed to create framebuffer", "err", err)
			os.Exit(1)
		}
		cam = camera.New(float32(cfg.Render.Width), float32(cfg.Render.Height), float32(cfg.World.Width), float32(cfg.World.Height))
		cam.SetZoom(float32(*camZoom))
		dx, dy := float32(0), float32(0)
		if *camX >= 0 {
			dx = float32(*camX) - cam.X
		}
		if *camY >= 0 {
			dy = float32(*camY) - cam.Y
		}
		cam.Pan(dx, dy)
		restoreTerm = enterRawMode()
	}
	if restoreTerm != nil {
		defer restoreTerm()
	}

	outputs, err := telemetry.NewOutputManager(cfg.Telemetry.ExportPath)
	if err != nil {
		slog.Error("failed to open telemetry output", "err", err)
		os.Exit(1)
	}
	defer outputs.Close()
	if err := outputs.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "err", err)
	}

	if *logInterval == 0 {
		*logInterval = cfg.Telemetry.ExportInterval
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.StatsWindow)
	stats := telemetry.NewCollector(float64(cfg.Telemetry.StatsWindow)*cfg.Physics.DT, cfg.Derived.DT32)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		world.RequestQuit()
	}()

	params := integrate.Params{
		Gravity: cfg.Derived.Gravity32,
		WindX:   cfg.Derived.WindX32,
		WindY:   cfg.Derived.WindY32,
		DT:      cfg.Derived.DT32,
	}

	frameDelay := time.Second / time.Duration(maxInt(cfg.Render.TargetFPS, 1))
	glyph := glyphRune(cfg.Render.Glyph)

	var gust *wind.Generator
	if *windGust > 0 {
		gust = wind.NewGenerator(1, float32(*windGust), *windSpeed)
	}

	var tick int32
	for !world.ShouldQuit() {
		if *maxTicks > 0 && int(tick) >= *maxTicks {
			break
		}

		tickParams := params
		if gust != nil {
			dx, dy := gust.Sample(params.DT)
			tickParams.WindX += dx
			tickParams.WindY += dy
		}

		report := world.Step(tickParams, perf)
		tick++

		if framebuffer != nil {
			renderFrame(framebuffer, world, cam, glyph)
			if err := framebuffer.Flush(os.Stdout); err != nil {
				slog.Error("framebuffer flush failed", "err", err)
				break
			}
			time.Sleep(frameDelay)
		}

		stats.RecordReap(report.Reaped)
		stats.RecordCollisions(report.CollisionsResolved)
		if stats.ShouldFlush(tick) {
			flushTelemetry(world, stats, perf, outputs, tick)
		}

		if *logInterval > 0 && int(tick)%*logInterval == 0 {
			perf.Stats().LogStats()
			if total := errStats.Total(); total > 0 {
				slog.Info("accumulated operation errors",
					"total", total,
					"invalid_parameter", errStats.Count(simerr.InvalidParameter),
					"out_of_resources", errStats.Count(simerr.OutOfResources),
					"out_of_range", errStats.Count(simerr.OutOfRange),
					"parse", errStats.Count(simerr.Parse),
				)
			}
		}
	}
}

func newWorld(cfg *config.Config) (*sim.World, error) {
	collision := collide.Settings{
		Radius:      float32(cfg.Collision.Radius),
		Restitution: float32(cfg.Collision.Restitution),
		Friction:    float32(cfg.Collision.Friction),
		Enabled:     cfg.Collision.Enabled,
	}

	bounds := sim.Bounds{Width: float32(cfg.World.Width), Height: float32(cfg.World.Height)}
	world, err := sim.New(cfg.World.Capacity, bounds, float32(cfg.World.GridCellSize), collision)
	if err != nil {
		return nil, err
	}

	for _, spec := range cfg.Fields.Items {
		f, err := fieldFromSpec(spec)
		if err != nil {
			return nil, err
		}
		world.Fields.Add(f)
	}

	return world, nil
}

func fieldFromSpec(spec config.FieldSpec) (field.Field, error) {
	switch spec.Kind {
	case "radial":
		return field.NewRadial(float32(spec.CenterX), float32(spec.CenterY), float32(spec.Strength), float32(spec.Radius)), nil
	case "directional":
		return field.NewDirectional(float32(spec.DirX), float32(spec.DirY), float32(spec.Strength)), nil
	case "vortex":
		return field.NewVortex(float32(spec.CenterX), float32(spec.CenterY), float32(spec.Strength), float32(spec.Radius)), nil
	case "attractor":
		return field.NewAttractor(float32(spec.CenterX), float32(spec.CenterY), float32(spec.Strength)), nil
	default:
		return field.Field{}, simerr.New(simerr.InvalidParameter, "main.fieldFromSpec", "unknown field kind: "+spec.Kind)
	}
}

// seedFromSource resolves a record.RecordStream by type name and binds
// it to the world's particle store. "sysmetrics" is registered
// locally since its factory needs a live Collector rather than a
// config string.
func seedFromSource(world *sim.World, cfg *config.Config, sourceType, sourcePath string, errs *simerr.Stats) error {
	registry := record.NewRegistry()
	registry.Register("sysmetrics", func() record.RecordStream {
		return sysmetrics.NewStream(sysmetrics.NewCollector())
	})

	stream, err := registry.Create(sourceType, sourcePath)
	if err != nil {
		return err
	}
	if err := stream.Open(); err != nil {
		return err
	}
	defer stream.Close()

	bindCfg := record.BindConfig{MaxRecords: cfg.Record.MaxRecords, Errs: errs}
	if sourceType == "sysmetrics" {
		// sysmetrics has no native x/y columns; remap its load-ish
		// percentages onto position instead of renaming its schema.
		bindCfg.XColumn = "cpu_pct"
		bindCfg.YColumn = "mem_pct"
	}
	result, err := record.Bind(stream, world.Store, bindCfg)
	if err != nil {
		return err
	}
	slog.Info("bound particles from record source", "source", sourceType, "bound", result.Bound)
	return nil
}

// renderFrame paints every active, camera-visible particle into the
// framebuffer, clearing it first. Particles outside the camera's
// viewport are culled before the coordinate transform; fb.Plot is
// also a silent no-op out of bounds, as a second line of defense.
func renderFrame(framebuffer *fb.Framebuffer, world *sim.World, cam *camera.Camera, glyph rune) {
	framebuffer.Clear()
	it := world.Store.Iter()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		p := world.Store.Get(h)
		if !cam.IsVisible(p.X, p.Y, 0) {
			continue
		}
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		framebuffer.Plot(int(sx), int(sy), glyph, particleColor(p.VX, p.VY))
	}
}

// particleColor maps squared speed to a blue-to-white gradient so
// faster particles read brighter.
func particleColor(vx, vy float32) fb.Color {
	speedSq := vx*vx + vy*vy
	if speedSq > 400 {
		speedSq = 400
	}
	intensity := uint32(128 + (speedSq/400)*127)
	return fb.Color(intensity<<16 | intensity<<8 | 0xFF)
}

func flushTelemetry(world *sim.World, stats *telemetry.Collector, perf *telemetry.PerfCollector, outputs *telemetry.OutputManager, tick int32) {
	active, _, _ := world.Store.Counters()

	speeds := make([]float64, 0, active)
	it := world.Store.Iter()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		p := world.Store.Get(h)
		speeds = append(speeds, math.Hypot(float64(p.VX), float64(p.VY)))
	}

	window := stats.Flush(tick, active, speeds)
	window.LogStats()
	if *detectOutliers {
		if outliers := analytics.ZScoreOutliers(speeds, *outlierZ); len(outliers) > 0 {
			slog.Info("speed outliers in window", "tick", tick, "count", len(outliers))
		}
	}
	if err := outputs.WriteTelemetry(window); err != nil {
		slog.Warn("failed to write telemetry window", "err", err)
	}
	if err := outputs.WritePerf(perf.Stats(), tick); err != nil {
		slog.Warn("failed to write perf window", "err", err)
	}
}

// enterRawMode puts stdin into raw mode so the renderer owns the
// whole terminal surface, returning a restore func (nil if stdin
// isn't a terminal, e.g. when output is piped).
func enterRawMode() func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	prev, err := term.MakeRaw(fd)
	if err != nil {
		slog.Warn("failed to enter raw terminal mode", "err", err)
		return nil
	}
	return func() { _ = term.Restore(fd, prev) }
}

func glyphRune(s string) rune {
	if s == "" {
		return 'o'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
