package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	designanalyzer "github.com/menta2k/design-analyzer"
	"github.com/menta2k/design-analyzer/internal/artifact"
	"github.com/menta2k/design-analyzer/internal/bootstrap"
	"github.com/menta2k/design-analyzer/internal/config"
	"github.com/menta2k/design-analyzer/internal/imageio"
	"github.com/menta2k/design-analyzer/internal/utils"
	"github.com/menta2k/design-analyzer/pkg/codegen"
)

// cropPadding is the margin in pixels kept around each component crop
const cropPadding = 4

type imageOptions struct {
	ext      string
	quality  int
	lossless bool
}

func main() {
	var in, configPath, outDir, frameworkList, runID string
	var overlay, crops bool
	var maxDim int
	var imgOpts imageOptions

	flag.StringVar(&in, "in", "", "input design: image path, directory of images, URL or data URL")
	flag.StringVar(&configPath, "config", "", "config file (json or yaml); environment variables override it")
	flag.StringVar(&outDir, "out", "", "output directory (default from config)")
	flag.StringVar(&frameworkList, "framework", "", "comma separated frameworks: react,vue,angular (default from config)")
	flag.StringVar(&runID, "run", "", "run id for a single input (default: input file name)")

	flag.BoolVar(&overlay, "overlay", false, "write a debug overlay with component bounds")
	flag.BoolVar(&crops, "crops", false, "write one cropped image per component")
	flag.IntVar(&maxDim, "maxdim", -1, "downscale the long side before analysis (px), 0=original")

	flag.StringVar(&imgOpts.ext, "ext", "png", "overlay and crop format: png|jpg|webp")
	flag.IntVar(&imgOpts.quality, "quality", 90, "JPEG/WebP quality for overlay and crops (1-100)")
	flag.BoolVar(&imgOpts.lossless, "lossless", false, "WebP lossless mode for overlay and crops")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in design.png|dir|URL [-config config.yaml] [-framework react,vue,angular] [-out outdir] [-overlay] [-crops]", filepath.Base(os.Args[0]))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if maxDim >= 0 {
		cfg.Image.MaxDimension = maxDim
	}
	if frameworkList != "" {
		cfg.Output.Frameworks = strings.Split(frameworkList, ",")
	}
	overlay = overlay || cfg.Output.Overlay

	// Unknown frameworks abort before any vendor call or output
	frameworks := make([]string, 0, len(cfg.Output.Frameworks))
	for _, name := range cfg.Output.Frameworks {
		fw, err := codegen.ParseFramework(name)
		if err != nil {
			log.Fatalf("%v (supported: %v)", err, codegen.Frameworks())
		}
		frameworks = append(frameworks, string(fw))
	}
	switch imgOpts.ext = strings.ToLower(imgOpts.ext); imgOpts.ext {
	case "png", "jpg", "webp":
	default:
		log.Fatalf("Unknown image format: %s (use png, jpg or webp)", imgOpts.ext)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration:\n%v", err)
	}

	logger := bootstrap.ProvideLogger(cfg)
	analyzer, err := bootstrap.ProvideAnalyzer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}
	store, err := bootstrap.ProvideArtifactStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create artifact store: %v", err)
	}
	loader := bootstrap.ProvideLoader(cfg)

	inputs := []string{in}
	if utils.DirExists(in) {
		inputs, err = utils.ListImageFiles(in)
		if err != nil {
			log.Fatal(err)
		}
		if len(inputs) == 0 {
			log.Fatalf("No images found in %s", in)
		}
	}
	if runID != "" && len(inputs) > 1 {
		log.Fatalf("-run can only be used with a single input")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, src := range inputs {
		id := runID
		if id == "" {
			id = utils.RunID(src)
		}

		img, err := loader.Load(ctx, src)
		if err == nil {
			img, err = imageio.Prepare(img, cfg.Image.MaxDimension, imgOpts.quality)
		}
		if err != nil {
			log.Printf("%s: %v", src, err)
			failed++
			continue
		}

		report, err := analyzer.DesignToCode(ctx, img, frameworks...)
		if err != nil {
			log.Printf("%s: %v", src, err)
			failed++
			continue
		}
		log.Printf("%s: %s", src, report)

		if err := writeRun(ctx, store, id, report, img.Data, overlay, crops, imgOpts); err != nil {
			log.Printf("%s: %v", src, err)
			failed++
		}
	}

	if failed > 0 {
		stop()
		log.Fatalf("%d of %d inputs failed", failed, len(inputs))
	}
}

func writeRun(ctx context.Context, store artifact.Store, runID string, report designanalyzer.Report, data []byte, overlay, crops bool, opts imageOptions) error {
	written, err := artifact.WriteReport(ctx, store, runID, report)
	for _, p := range written {
		log.Printf("wrote %s/%s", runID, p)
	}
	if err != nil {
		return err
	}
	if !overlay && !crops {
		return nil
	}

	img, err := imageio.Decode(data)
	if err != nil {
		return err
	}

	if overlay {
		p := "overlay." + opts.ext
		if err := putImage(ctx, store, runID, p, imageio.CreateDebugOverlay(img, report.Components), opts); err != nil {
			return fmt.Errorf("debug overlay: %w", err)
		}
		log.Printf("wrote %s/%s", runID, p)
	}

	if crops {
		for _, c := range report.Components {
			crop, err := imageio.CropComponent(img, c.Position, cropPadding)
			if err != nil {
				log.Printf("crop %s skipped: %v", c.Name, err)
				continue
			}
			p := fmt.Sprintf("crops/%s.%s", c.Name, opts.ext)
			if err := putImage(ctx, store, runID, p, crop, opts); err != nil {
				return fmt.Errorf("crop %s: %w", c.Name, err)
			}
			log.Printf("wrote %s/%s", runID, p)
		}
	}
	return nil
}

func putImage(ctx context.Context, store artifact.Store, runID, p string, img image.Image, opts imageOptions) error {
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, opts.ext, opts.quality, opts.lossless); err != nil {
		return err
	}
	return store.Put(ctx, runID, p, buf.Bytes())
}
