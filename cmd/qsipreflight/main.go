package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/mrsinham/qsipreflight/internal/bids"
	"github.com/mrsinham/qsipreflight/internal/config"
	"github.com/mrsinham/qsipreflight/internal/dicomsrc"
	"github.com/mrsinham/qsipreflight/internal/logging"
	"github.com/mrsinham/qsipreflight/internal/util"
	"github.com/mrsinham/qsipreflight/internal/validate"
)

// version is set at build time via -ldflags
var version = "dev"

// Exit codes: 0 checks ran (warnings included), 1 usage or I/O error,
// 2 no input data for the subject.
const (
	exitOK      = 0
	exitUsage   = 1
	exitNoInput = 2
)

func main() {
	// Subcommand dispatch before flag.Parse
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "srccheck":
			os.Exit(runSrccheck(os.Args[2:]))
		case "version":
			fmt.Printf("qsipreflight %s\n", version)
			os.Exit(exitOK)
		case "validate":
			os.Exit(runValidate(os.Args[2:]))
		case "help", "-h", "--help":
			printHelp()
			os.Exit(exitOK)
		}
	}

	// Bare invocation defaults to validate
	os.Exit(runValidate(os.Args[1:]))
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "", "Load configuration from YAML file (default: ./"+config.DefaultFileName+" if present)")
	b0Threshold := fs.Float64("b0-threshold", -1, fmt.Sprintf("b-value at or below which a volume counts as b=0 (default: %d)", bids.DefaultBZeroThreshold))
	workers := fs.Int("workers", 0, fmt.Sprintf("Number of parallel acquisition checks (default: %d = CPU cores)", runtime.NumCPU()))
	skip := fs.String("skip", "", "Comma-separated checks to skip: volume-count, b0, metadata")
	noColor := fs.Bool("no-color", false, "Disable styled summary output")
	verbose := fs.Bool("verbose", false, "Enable debug logging on stderr")
	interactive := fs.Bool("interactive", false, "Prompt for subject and data root")
	fs.BoolVar(interactive, "i", false, "Prompt for subject and data root (shortcut)")
	showVersion := fs.Bool("version", false, "Show version")
	help := fs.Bool("help", false, "Show help message")
	fs.Parse(args)

	if *showVersion {
		fmt.Printf("qsipreflight %s\n", version)
		return exitOK
	}
	if *help {
		printHelp()
		return exitOK
	}

	logging.Init(*verbose)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return exitUsage
	}

	subject := fs.Arg(0)
	dataRoot := cfg.DataRoot
	if fs.NArg() > 1 {
		dataRoot = fs.Arg(1)
	}

	if *interactive {
		subject, dataRoot, err = promptValidate(subject, dataRoot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsage
		}
	}

	if subject == "" {
		fmt.Fprintf(os.Stderr, "Error: subject ID is required\n")
		printUsage()
		return exitUsage
	}

	skips, err := validate.ParseSkips(*skip)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	threshold := cfg.BZeroThreshold
	if *b0Threshold >= 0 {
		threshold = *b0Threshold
	}
	nWorkers := cfg.Workers
	if *workers > 0 {
		nWorkers = *workers
	}

	opts := validate.Options{
		Subject:        subject,
		DataRoot:       dataRoot,
		BZeroThreshold: threshold,
		Workers:        nWorkers,
		Skip:           skips,
		Color:          cfg.Color && !*noColor,
		Out:            os.Stdout,
	}

	if err := validate.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, bids.ErrNoInputData) {
			return exitNoInput
		}
		return exitUsage
	}
	return exitOK
}

func runSrccheck(args []string) int {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return exitUsage
	}

	fs := flag.NewFlagSet("srccheck", flag.ExitOnError)
	mapAP := fs.String("map-ap", cfg.Source.MapAP, "Case-insensitive regex mapping series names to AP")
	mapPA := fs.String("map-pa", cfg.Source.MapPA, "Case-insensitive regex mapping series names to PA")
	verbose := fs.Bool("verbose", false, "Enable debug logging on stderr")
	var showTags []string
	fs.Func("show-tag", "Extra DICOM tag to display per series (repeatable)", func(s string) error {
		showTags = append(showTags, s)
		return nil
	})
	fs.Parse(args)

	logging.Init(*verbose)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: source root is required\n")
		fmt.Fprintln(os.Stderr, "\nUsage:")
		fmt.Fprintln(os.Stderr, "  qsipreflight srccheck [options] <src-root>")
		fs.PrintDefaults()
		return exitUsage
	}

	tags, err := util.ParseShowTags(showTags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	err = dicomsrc.Check(dicomsrc.Options{
		Root:     fs.Arg(0),
		MapAP:    *mapAP,
		MapPA:    *mapPA,
		ShowTags: tags,
		Out:      os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, bids.ErrNoInputData) {
			return exitNoInput
		}
		return exitUsage
	}
	return exitOK
}

// loadConfig loads an explicit config file, or the default file when it
// exists, or built-in defaults.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage:")
	fmt.Fprintln(os.Stderr, "  qsipreflight [validate] [options] <subject-id> [data-root]")
	fmt.Fprintln(os.Stderr, "  qsipreflight srccheck [options] <src-root>")
}

func printHelp() {
	fmt.Println("qsipreflight")
	fmt.Println("============")
	fmt.Println()
	fmt.Println("Preflight checks for diffusion MRI datasets before QSIPrep processing.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  qsipreflight [validate] [options] <subject-id> [data-root]")
	fmt.Println("  qsipreflight srccheck [options] <src-root>")
	fmt.Println("  qsipreflight version")
	fmt.Println()
	fmt.Println("validate checks the BIDS dwi/ directory of one subject:")
	fmt.Println("  - companion files (.json, .bval, .bvec) next to every image")
	fmt.Println("  - volume counts agree between image, bval and bvec")
	fmt.Println("  - at least one b=0 volume per acquisition")
	fmt.Println("  - PhaseEncodingDirection covers both AP and PA polarities")
	fmt.Println("  - TotalReadoutTime is uniform across acquisitions")
	fmt.Println()
	fmt.Println("Validate options:")
	fmt.Println("  --config <FILE>       Load configuration from YAML file")
	fmt.Printf("  --b0-threshold <N>    b-value at or below which a volume counts as b=0 (default: %d)\n", bids.DefaultBZeroThreshold)
	fmt.Printf("  --workers <N>         Number of parallel acquisition checks (default: %d = CPU cores)\n", runtime.NumCPU())
	fmt.Println("  --skip <LIST>         Comma-separated checks to skip: volume-count, b0, metadata")
	fmt.Println("  --no-color            Disable styled summary output")
	fmt.Println("  --verbose             Enable debug logging on stderr")
	fmt.Println("  -i, --interactive     Prompt for subject and data root")
	fmt.Println()
	fmt.Println("srccheck inspects a pre-conversion DICOM source tree (T1w/, DWI/, topup/):")
	fmt.Println("  --map-ap <REGEX>      Series name pattern mapped to AP")
	fmt.Println("  --map-pa <REGEX>      Series name pattern mapped to PA")
	fmt.Println("  --show-tag <NAME>     Extra DICOM tag to display per series (repeatable)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Validate one subject under the current directory")
	fmt.Println("  qsipreflight validate sub-01")
	fmt.Println()
	fmt.Println("  # Validate against an explicit BIDS root")
	fmt.Println("  qsipreflight validate sub-01 /data/bids")
	fmt.Println()
	fmt.Println("  # Relax the b=0 threshold and skip metadata checks")
	fmt.Println("  qsipreflight validate --b0-threshold 200 --skip metadata sub-01")
	fmt.Println()
	fmt.Println("  # Inspect a raw DICOM export before conversion")
	fmt.Println("  qsipreflight srccheck --show-tag EchoTime --show-tag RepetitionTime /data/raw/sub-01")
	fmt.Println()
	fmt.Println("Exit codes:")
	fmt.Println("  0  checks ran to completion (warnings do not fail the run)")
	fmt.Println("  1  usage or I/O error")
	fmt.Println("  2  no input data found for the subject")
}
