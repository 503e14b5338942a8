package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/pipeline"
	"github.com/nvr-ai/go-cutout/profiler"
	"github.com/nvr-ai/go-cutout/rendercache"
	"github.com/nvr-ai/go-cutout/snapshot"
	"github.com/nvr-ai/go-cutout/sticker"
	"github.com/nvr-ai/go-cutout/util"
)

const (
	// DefaultReferenceWidth is the view width, in points, offsets are assumed
	// to be authored in when -ref-width is not given.
	DefaultReferenceWidth = 0
	// DefaultCacheBytes bounds the batch render cache.
	DefaultCacheBytes = 512 << 20
)

// Mode selects the render entry point.
type Mode string

const (
	ModeFinal   Mode = "final"
	ModePreview Mode = "preview"
	ModeSticker Mode = "sticker"
)

// Config holds the command line configuration.
type Config struct {
	Subject    string
	Background string
	Snapshot   string
	Output     string
	Dir        string
	Mode       Mode
	Format     images.ImageFormat
	RefWidth   float64
	Quality    float64
	Verbose    bool
	Profile    bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	pipeline.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (Config, error) {
	var (
		cfg    Config
		mode   string
		format string
	)
	fs := flag.NewFlagSet("cutout", flag.ContinueOnError)
	fs.StringVar(&cfg.Subject, "subject", "", "Path to the cut-out subject image (.png, .webp)")
	fs.StringVar(&cfg.Background, "background", "", "Optional background photo; overrides the snapshot background")
	fs.StringVar(&cfg.Snapshot, "snapshot", "", "Edit snapshot (.yaml, .yml, .json); defaults apply when empty")
	fs.StringVar(&cfg.Output, "o", "", "Output file, or output directory with -dir")
	fs.StringVar(&cfg.Dir, "dir", "", "Render every image in this directory")
	fs.StringVar(&mode, "mode", string(ModeFinal), "Render mode: final, preview or sticker")
	fs.StringVar(&format, "format", "", "Output format: png, jpeg or webp (default: from -o)")
	fs.Float64Var(&cfg.RefWidth, "ref-width", DefaultReferenceWidth, "Width in points of the view offsets were authored in")
	fs.Float64Var(&cfg.Quality, "quality", 0.9, "Lossy encode quality in (0, 1]")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log every render stage")
	fs.BoolVar(&cfg.Profile, "profile", false, "Print a stage timing report when done")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Mode = Mode(strings.ToLower(mode))
	switch cfg.Mode {
	case ModeFinal, ModePreview, ModeSticker:
	default:
		return Config{}, errors.Errorf("unknown mode %q", mode)
	}

	if cfg.Output == "" {
		return Config{}, errors.New("-o is required")
	}
	if (cfg.Subject == "") == (cfg.Dir == "") {
		return Config{}, errors.New("exactly one of -subject and -dir is required")
	}

	switch strings.ToLower(format) {
	case "":
		if cfg.Dir != "" {
			cfg.Format = images.FormatPNG
			break
		}
		f, err := images.FormatFromFilename(cfg.Output)
		if err != nil {
			return Config{}, err
		}
		cfg.Format = f
	case "png":
		cfg.Format = images.FormatPNG
	case "jpg", "jpeg":
		cfg.Format = images.FormatJPEG
	case "webp":
		cfg.Format = images.FormatWebP
	default:
		return Config{}, errors.Errorf("unknown format %q", format)
	}
	if cfg.Mode == ModeSticker && cfg.Format == images.FormatJPEG {
		return Config{}, errors.New("stickers need an alpha channel: use png or webp")
	}
	return cfg, nil
}

// job is one subject to render.
type job struct {
	input  string
	output string
}

func run(cfg Config, logger *slog.Logger) error {
	snap := snapshot.Default()
	if cfg.Snapshot != "" {
		s, err := util.LoadSnapshotFile(cfg.Snapshot)
		if err != nil {
			return err
		}
		snap = s
	}
	if cfg.Background != "" {
		bg, err := util.LoadImageFile(cfg.Background)
		if err != nil {
			return err
		}
		snap = snap.With(func(s *snapshot.Snapshot) {
			s.Background = snapshot.Background{
				Kind:      compositor.BackgroundRaster,
				RasterRef: cfg.Background,
				Raster:    bg.Image,
			}
		})
	}

	var prof *profiler.Profiler
	if cfg.Profile {
		prof = profiler.New(profiler.Options{})
		defer func() { _ = prof.Report(os.Stderr) }()
	}
	renderer, err := pipeline.NewRenderer(pipeline.WithProfiler(prof))
	if err != nil {
		return err
	}

	if cfg.Dir == "" {
		return renderOne(renderer, nil, cfg, snap, job{input: cfg.Subject, output: cfg.Output}, logger, prof)
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return errors.Wrap(err, "read input directory")
	}
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	var jobs []job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := images.FormatFromFilename(e.Name()); err != nil {
			continue
		}
		in := filepath.Join(cfg.Dir, e.Name())
		jobs = append(jobs, job{input: in, output: util.OutputPath(cfg.Output, in, cfg.Format)})
	}

	cache, err := rendercache.New(DefaultCacheBytes)
	if err != nil {
		return err
	}
	defer cache.Close()

	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, j := range jobs {
		g.Go(func() error {
			if err := renderOne(renderer, cache, cfg, snap, j, logger, prof); err != nil {
				failed.Add(1)
				logger.Error("render failed", "input", j.input, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("batch done", "rendered", len(jobs)-int(failed.Load()), "failed", failed.Load())
	if n := failed.Load(); n > 0 {
		return errors.Errorf("%d of %d renders failed", n, len(jobs))
	}
	return nil
}

// renderOne renders one subject and writes its outputs. A nil cache renders
// directly.
func renderOne(
	r *pipeline.Renderer,
	cache *rendercache.Cache,
	cfg Config,
	snap snapshot.Snapshot,
	j job,
	logger *slog.Logger,
	prof *profiler.Profiler,
) error {
	subject, err := util.LoadImageFile(j.input)
	if err != nil {
		return err
	}

	if cfg.Mode == ModeSticker {
		return exportSticker(r, cfg, snap, subject.Image, j.output, logger, prof)
	}

	render := func() (*images.Image, error) {
		if cfg.Mode == ModePreview {
			p, err := r.RenderPreview(subject.Image, snap, cfg.RefWidth)
			if err != nil {
				return nil, err
			}
			return p.Cropped, nil
		}
		return r.RenderFinal(subject.Image, snap, cfg.RefWidth)
	}

	var img *images.Image
	if cache != nil {
		key := rendercache.Key(subject.Image.Checksum(), snap.Hash(), string(cfg.Mode))
		var hit bool
		img, hit, err = cache.GetOrRender(key, render)
		if hit {
			logger.Debug("render cache hit", "input", j.input)
		}
	} else {
		img, err = render()
	}
	if err != nil {
		return err
	}

	opts := images.EncodeOptions{Quality: cfg.Quality, Lossless: snap.Background.IsNone() && cfg.Format == images.FormatWebP}
	data, err := images.EncodeBytes(img, cfg.Format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.output, data, 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}
	prof.RecordMetric("output_bytes", float64(len(data)))

	logger.Info("rendered",
		"input", j.input,
		"output", j.output,
		"size", fmt.Sprintf("%dx%d", img.Width(), img.Height()),
		"bytes", humanize.Bytes(uint64(len(data))))
	return nil
}

func exportSticker(
	r *pipeline.Renderer,
	cfg Config,
	snap snapshot.Snapshot,
	subject *images.Image,
	output string,
	logger *slog.Logger,
	prof *profiler.Profiler,
) error {
	sq, err := r.RenderSticker(subject, snap, sticker.Options{Margin: sticker.DefaultMargin})
	if err != nil {
		return err
	}

	budget := sticker.PNGBudget()
	if cfg.Format == images.FormatWebP {
		budget = sticker.WebPBudget()
	}
	budget.Size = snap.StickerSize

	done := prof.StartOperation("sticker_export")
	res, err := sticker.Export(sq, budget)
	done()
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, res.Data, 0o644); err != nil {
		return errors.Wrap(err, "write sticker")
	}
	prof.RecordMetric("sticker_bytes", float64(len(res.Data)))

	if !res.WithinBudget {
		logger.Warn("sticker exceeds size budget at the minimum size",
			"output", output,
			"bytes", humanize.Bytes(uint64(len(res.Data))),
			"budget", humanize.Bytes(uint64(budget.MaxBytes)))
	}
	logger.Info("sticker exported",
		"output", output,
		"edge", res.Size,
		"quality", res.Quality,
		"attempts", res.Attempts,
		"bytes", humanize.Bytes(uint64(len(res.Data))))
	return nil
}
