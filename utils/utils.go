package utils

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"imageforensics/types"
)

// Arguments holds parsed flags under their canonical names plus the
// positional image path
type Arguments struct {
	Flags map[string]string
	File  string
}

// Has reports whether a flag was given
func (a Arguments) Has(name string) bool {
	_, ok := a.Flags[name]
	return ok
}

// Get returns a flag's value, or "" when absent
func (a Arguments) Get(name string) string {
	return a.Flags[name]
}

// flagAliases maps the spellings of every option flag to its canonical
// name. Analysis flags are resolved by types.ParseTechnique.
var flagAliases = map[string]string{
	"quality":  "quality",
	"q":        "quality",
	"nsize":    "nsize",
	"s":        "nsize",
	"config":   "config",
	"out":      "out",
	"exiftool": "exiftool",
	"backend":  "backend",
	"format":   "format",
	"tempfile": "tempfile",
	"debug":    "debug",
	"logfile":  "logfile",
	"no-color": "no-color",
	"help":     "help",
	"h":        "help",
}

// canonicalFlag resolves a flag name without its dashes
func canonicalFlag(name string) (string, bool) {
	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	if t, ok := types.ParseTechnique(name); ok {
		return string(t), true
	}
	return "", false
}

// valueFlags take the next argument as their value when no "=" is given
var valueFlags = map[string]bool{
	"quality": true,
	"nsize":   true,
	"config":  true,
	"out":     true,
	"backend": true,
	"format":  true,
	"logfile": true,
}

// ParseArguments converts command-line arguments (without the program name)
// into canonical flags and the image path. Both "-x" and "--x" spellings
// are accepted.
func ParseArguments(argv []string) (Arguments, error) {
	args := Arguments{Flags: make(map[string]string)}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if !strings.HasPrefix(arg, "-") || arg == "-" {
			if args.File != "" {
				return args, types.NewInvalidInputError("only one image can be analyzed at a time", arg, nil)
			}
			args.File = arg
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if parts := strings.SplitN(name, "=", 2); len(parts) == 2 {
			name, value, hasValue = parts[0], parts[1], true
		}

		canonical, ok := canonicalFlag(name)
		if !ok {
			return args, types.NewInvalidInputError("unknown flag "+arg, "", nil)
		}

		if valueFlags[canonical] && !hasValue {
			if i+1 >= len(argv) {
				return args, types.NewInvalidInputError("flag "+arg+" needs a value", "", nil)
			}
			value = argv[i+1]
			i++
		} else if !hasValue {
			value = "true"
		}
		args.Flags[canonical] = value
	}

	return args, nil
}

// SelectTechnique returns the single requested analysis, EXIF when none
func SelectTechnique(args Arguments) (types.Technique, error) {
	var selected []types.Technique
	for _, t := range types.AllTechniques {
		if args.Has(string(t)) {
			selected = append(selected, t)
		}
	}

	switch len(selected) {
	case 0:
		return types.TechniqueExif, nil
	case 1:
		return selected[0], nil
	default:
		names := make([]string, len(selected))
		for i, t := range selected {
			names[i] = string(t)
		}
		return "", types.NewInvalidInputError(
			fmt.Sprintf("analyses are mutually exclusive, got %s", strings.Join(names, ", ")), "", nil)
	}
}

// ParseQuality parses a resave quality. Range is left to the codec.
func ParseQuality(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, types.NewInvalidInputError(fmt.Sprintf("invalid quality value '%s'", s), "", err)
	}
	return q, nil
}

// ParseKernelSize parses a median kernel size. Even or small sizes are
// accepted here and corrected by the engine.
func ParseKernelSize(s string) (int, error) {
	k, err := strconv.Atoi(s)
	if err != nil {
		return 0, types.NewInvalidInputError(fmt.Sprintf("invalid kernel size '%s'", s), "", err)
	}
	return k, nil
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s [analysis] [options] IMAGE\n", program)
	fmt.Fprintf(w, "\nAnalyses (choose one, default --exif):\n")
	fmt.Fprintf(w, "  -e,  --exif       : Metadata forensics (any supported format)\n")
	fmt.Fprintf(w, "  -g,  --jpegghost  : JPEG Ghost map (JPEG only)\n")
	fmt.Fprintf(w, "  -el, --ela        : Error level analysis (JPEG only)\n")
	fmt.Fprintf(w, "  -n2, --noise2     : Median-filter noise residue (JPEG only)\n")
	fmt.Fprintf(w, "\nParameters:\n")
	fmt.Fprintf(w, "  -q,  --quality    : Resave quality (default: 60 for ghost, 90 for ELA)\n")
	fmt.Fprintf(w, "  -s,  --nsize      : Median kernel size, odd and >= 3 (default: 3)\n")
	fmt.Fprintf(w, "\nOptions:\n")
	fmt.Fprintf(w, "  --config=PATH     : JSON configuration file\n")
	fmt.Fprintf(w, "  --out=PATH        : Save an original/map comparison image\n")
	fmt.Fprintf(w, "  --exiftool[=PATH] : Use exiftool for the raw metadata dump\n")
	fmt.Fprintf(w, "  --backend=NAME    : Codec backend, opencv or go (default: opencv)\n")
	fmt.Fprintf(w, "  --format=NAME     : Resave format, jpeg or webp (default: jpeg)\n")
	fmt.Fprintf(w, "  --tempfile        : Resave through a temporary file\n")
	fmt.Fprintf(w, "  --debug           : Enable debug logging\n")
	fmt.Fprintf(w, "  --logfile=PATH    : Write logs to a file\n")
	fmt.Fprintf(w, "  --no-color        : Disable colored output\n")
	fmt.Fprintf(w, "\nSupported formats: .jpg .jpeg .png .tiff .bmp\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  %s -e photo.jpg\n", program)
	fmt.Fprintf(w, "  %s -g -q 70 photo.jpg --out=ghost.png\n", program)
	fmt.Fprintf(w, "  %s -n2 -s 5 photo.jpg\n", program)
}
