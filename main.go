package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"imageforensics/config"
	"imageforensics/exifforensics"
	"imageforensics/forensics"
	"imageforensics/imageprocessor"
	"imageforensics/logging"
	"imageforensics/progress"
	"imageforensics/report"
	"imageforensics/signalhandler"
	"imageforensics/types"
	"imageforensics/utils"
)

var errorColor = color.New(color.FgRed, color.Bold).SprintFunc()

func main() {
	// Temp resave files must not outlive an interrupt
	signalhandler.SetupHandler()
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	program := filepath.Base(os.Args[0])
	args, err := utils.ParseArguments(os.Args[1:])
	if err != nil {
		fail(err, program)
	}
	if args.Has("help") {
		utils.PrintUsage(os.Stdout, program)
		return
	}
	if args.File == "" {
		utils.PrintUsage(os.Stderr, program)
		os.Exit(1)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fail(err, program)
	}
	if cfg.Output.NoColor {
		color.NoColor = true
	}

	if err := setupLogging(cfg, args.Has("debug")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logging: %v\n", err)
	}
	defer logging.CloseLogger()

	technique, err := utils.SelectTechnique(args)
	if err != nil {
		fail(err, program)
	}

	path := args.File
	if _, err := imageprocessor.ValidateInput(path, technique); err != nil {
		fail(err, program)
	}

	printer := report.NewPrinter(os.Stdout, !color.NoColor)
	if technique == types.TechniqueExif {
		err = runExif(cfg, printer, path)
	} else {
		err = runImageAnalysis(cfg, printer, args, technique, path)
	}
	if types.IsFatal(err) {
		fail(err, program)
	}
	if err != nil {
		logging.LogWarning("Analysis of %s degraded: %v", path, err)
	}
}

// loadConfig layers defaults, the config file, environment and flags
func loadConfig(args utils.Arguments) (*config.Config, error) {
	cfg := config.Default()
	if path := args.Get("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, types.NewInvalidInputError(err.Error(), path, err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if v := args.Get("backend"); v != "" {
		cfg.Codec.Backend = v
	}
	if v := args.Get("format"); v != "" {
		cfg.Codec.Format = v
	}
	if args.Has("tempfile") {
		cfg.Codec.TempFile = true
	}
	if args.Has("exiftool") {
		cfg.Metadata.UseExiftool = true
		if v := args.Get("exiftool"); v != "true" {
			cfg.Metadata.ExiftoolPath = v
		}
	}
	if v := args.Get("out"); v != "" {
		cfg.Output.SaveComparison = v
	}
	if args.Has("no-color") {
		cfg.Output.NoColor = true
	}
	if v := args.Get("logfile"); v != "" {
		cfg.Logging.File = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, types.NewInvalidInputError(err.Error(), "", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config, debug bool) error {
	logging.SetLevel(cfg.Logging.Level)
	if debug {
		logging.EnableDebug()
	}
	if cfg.Logging.File == "" {
		return nil
	}
	if err := logging.SetupLogger(cfg.Logging.File); err != nil {
		return err
	}
	if debug {
		fmt.Fprintf(os.Stderr, "Debug mode enabled. Logging to: %s\n", cfg.Logging.File)
	}
	return nil
}

func runExif(cfg *config.Config, printer *report.Printer, path string) error {
	start := time.Now()
	r, err := exifforensics.NewAnalyzer(cfg.Metadata).Analyze(path)
	logging.LogAnalysis(path, string(types.TechniqueExif), time.Since(start), err)
	if err != nil {
		return err
	}
	printer.PrintReport(r)
	return nil
}

func runImageAnalysis(cfg *config.Config, printer *report.Printer, args utils.Arguments, technique types.Technique, path string) error {
	param, err := parameterFor(args, technique)
	if err != nil {
		return err
	}

	runner, err := forensics.NewRunner(cfg)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker(technique.DisplayName(), isatty.IsTerminal(os.Stderr.Fd()))
	runner.SetProgress(tracker.Func())
	res, err := runner.Run(path, technique, param)
	tracker.Finish()
	if err != nil {
		return err
	}

	printer.PrintMapSummary(res)
	if out := cfg.Output.SaveComparison; out != "" {
		if err := report.SaveComparison(out, res); err != nil {
			return err
		}
		fmt.Printf("Comparison saved to %s\n", out)
	}
	return nil
}

// parameterFor returns the quality or kernel flag, or 0 for the default
func parameterFor(args utils.Arguments, technique types.Technique) (int, error) {
	if technique == types.TechniqueNoise {
		if v := args.Get("nsize"); v != "" {
			return utils.ParseKernelSize(v)
		}
		return 0, nil
	}
	if v := args.Get("quality"); v != "" {
		return utils.ParseQuality(v)
	}
	return 0, nil
}

func fail(err error, program string) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorColor("Error:"), err)
	if types.IsType(err, types.ErrorTypeInvalidInput) {
		fmt.Fprintln(os.Stderr)
		utils.PrintUsage(os.Stderr, program)
	}
	logging.CloseLogger()
	os.Exit(1)
}
