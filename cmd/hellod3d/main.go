package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/disintegration/imaging"
	"github.com/esimov/hellod3d"
	"github.com/esimov/hellod3d/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┬ ┬┌─┐┬  ┬  ┌─┐┌┬┐┌─┐┌┬┐
├─┤├┤ │  │  │ │ ││ ─┤ ││
┴ ┴└─┘┴─┘┴─┘└─┘─┴┘└─┘─┴┘

Direct3D 11 hello triangle.
    Version: %s

`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	configPath  = flag.String("config", "", "Config file (defaults to the per-user config file)")
	backend     = flag.String("backend", "", "Rendering backend: d3d11 or software")
	driver      = flag.String("driver", "", "Direct3D driver type: hardware, warp or reference")
	language    = flag.String("shader", "", "Shader language: hlsl or wgsl")
	shaderDir   = flag.String("shader-dir", "", "Directory overriding the built-in shader sources")
	cacheDir    = flag.String("cache", "", "Directory of the compiled shader objects")
	width       = flag.Int("width", 0, "Window width")
	height      = flag.Int("height", 0, "Window height")
	title       = flag.String("title", "", "Window title")
	debug       = flag.Bool("debug", false, "Enable the Direct3D debug layer and debug shader builds")
	vsync       = flag.Int("vsync", 0, "Present sync interval (0-4)")
	samples     = flag.Int("samples", 0, "Software rasterizer supersampling factor")
	composite   = flag.String("composite", "", "Software rasterizer composite operator (e.g. src_over, dst_over, xor)")
	blend       = flag.String("blend", "", "Software rasterizer blend mode (e.g. normal, multiply, screen)")
	snapshot    = flag.String("snapshot", "", "Render a single frame into the file (or - for stdout) and exit")
	dumpHLSL    = flag.Bool("dump-hlsl", false, "Print the HLSL source of the configured shaders and exit")
	writeConfig = flag.Bool("write-config", false, "Write the effective configuration to the config file and exit")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		hellod3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	path, cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("Failed to load the configuration: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration: %v", err)
	}

	switch {
	case *writeConfig:
		if err := hellod3d.WriteConfig(path, cfg); err != nil {
			fatal("Failed to write the configuration: %v", err)
		}
		fmt.Fprintf(os.Stderr, "\nThe configuration has been saved as: %s\n",
			utils.DecorateText(path, utils.SuccessMessage),
		)
	case *dumpHLSL:
		if err := printHLSL(cfg); err != nil {
			fatal("Failed to load the shaders: %v", err)
		}
	case *snapshot != "":
		if err := takeSnapshot(cfg, *snapshot); err != nil {
			fatal("Failed to render the snapshot: %v", err)
		}
	case cfg.Renderer.Backend == hellod3d.BackendSoftware:
		go func() {
			if err := hellod3d.Run(cfg); err != nil {
				fatal("Preview failed: %v", err)
			}
			os.Exit(0)
		}()
		app.Main()
	default:
		if err := hellod3d.Run(cfg); err != nil {
			if errors.Is(err, hellod3d.ErrBackendUnsupported) {
				log.Println(utils.DecorateText("Use -backend software on this platform.", utils.WarningMessage))
			}
			fatal("Rendering failed: %v", err)
		}
	}
}

// loadConfig reads the config file at path. Without an explicit path the
// per-user file is used when it exists, and the defaults otherwise.
func loadConfig(path string) (string, *hellod3d.Config, error) {
	if path != "" {
		cfg, err := hellod3d.LoadConfig(path)
		return path, cfg, err
	}
	path, err := hellod3d.DefaultConfigPath()
	if err != nil {
		return "", nil, err
	}
	cfg, err := hellod3d.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, hellod3d.DefaultConfig(), nil
	}
	return path, cfg, err
}

// applyFlags overrides the configuration with the flags set on the command line.
func applyFlags(cfg *hellod3d.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Renderer.Backend = *backend
		case "driver":
			cfg.Renderer.Driver = *driver
		case "shader":
			cfg.Shader.Language = *language
		case "shader-dir":
			cfg.Shader.Dir = *shaderDir
		case "cache":
			cfg.Shader.CacheDir = *cacheDir
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "title":
			cfg.Window.Title = *title
		case "debug":
			cfg.Renderer.Debug = *debug
		case "vsync":
			cfg.Renderer.SyncInterval = *vsync
		case "samples":
			cfg.Renderer.Samples = *samples
		case "composite":
			cfg.Renderer.Composite = *composite
		case "blend":
			cfg.Renderer.Blend = *blend
		}
	})
}

func printHLSL(cfg *hellod3d.Config) error {
	prog, err := hellod3d.LoadProgram(cfg.Shader)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s %s\n",
		utils.DecorateText(prog.Vertex.Name, utils.StatusMessage),
		utils.DecorateText(fmt.Sprintf("(%s, %s)", prog.Vertex.Entry, prog.Pixel.Entry), utils.DefaultMessage),
	)
	os.Stdout.Write(prog.Vertex.Code)
	if prog.Pixel.Name != prog.Vertex.Name {
		fmt.Fprintf(os.Stderr, "%s\n", utils.DecorateText(prog.Pixel.Name, utils.StatusMessage))
		os.Stdout.Write(prog.Pixel.Code)
	}
	return nil
}

func takeSnapshot(cfg *hellod3d.Config, out string) error {
	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("▲ HELLOD3D", utils.StatusMessage),
		utils.DecorateText("is rendering the snapshot...", utils.DefaultMessage))
	spinner := utils.NewSpinner(spinnerText, time.Millisecond*100, true)

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		spinner.RestoreCursor()
		os.Exit(1)
	}()

	now := time.Now()
	spinner.Start()
	var err error
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			spinner.Stop()
			return errors.New("`-` should be used with a pipe for stdout")
		}
		err = hellod3d.Snapshot(cfg, os.Stdout, imaging.PNG)
	} else {
		err = hellod3d.SaveSnapshot(cfg, out)
	}
	spinner.StopMsg = fmt.Sprintf("%s %s\n",
		utils.DecorateText("▲ HELLOD3D", utils.StatusMessage),
		utils.DecorateText("is rendering the snapshot... ✔", utils.DefaultMessage))
	spinner.Stop()
	if err != nil {
		return err
	}

	if out != pipeName {
		fmt.Fprintf(os.Stderr, "The snapshot has been saved as: %s\n",
			utils.DecorateText(filepath.Base(out), utils.SuccessMessage),
		)
	}
	fmt.Fprintf(os.Stderr, "Execution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage),
	)
	return nil
}

func fatal(format string, err error) {
	log.Fatalf(
		utils.DecorateText(format, utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage),
	)
}
