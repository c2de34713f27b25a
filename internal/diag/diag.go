// Package diag provides the stderr diagnostics, timing, and stats reporting
// shared by the ixbuild and ixquery commands.
package diag

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/pbnjay/memory"
)

var startTime time.Time

var verbose bool

func init() {
	startTime = time.Now()
}

// SetVerbose turns on progress reporting to stderr.
func SetVerbose(v bool) {
	verbose = v
}

// Verbose reports whether -verbose was passed.
func Verbose() bool {
	return verbose
}

var errorBanner = color.New(color.FgRed, color.Bold)
var warnBanner = color.New(color.FgYellow, color.Bold)

// Fatal prints a colorized diagnostic and aborts the process. Used for
// MissingInput, CorpusIOError, and InternalInvariantViolation, which must
// never leave a partial index on disk.
func Fatal(format string, args ...interface{}) {
	errorBanner.Fprint(os.Stderr, "\nERROR: ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n")
	os.Exit(1)
}

// Warn prints a non-fatal diagnostic. Used for ParseError, where a single bad
// query must not abort the batch.
func Warn(format string, args ...interface{}) {
	warnBanner.Fprint(os.Stderr, "\nWARNING: ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n")
}

// Progress prints a line only when -verbose is set.
func Progress(format string, args ...interface{}) {
	if !verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n")
}

// GetNumericArg reads the argument following name, aborting with a diagnostic
// if it is missing or not an integer.
func GetNumericArg(args []string, name string, zer, min, max int) int {
	if len(args) < 2 {
		Fatal("%s is missing", name)
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		Fatal("%s (%s) is not an integer", name, args[1])
	}
	if value < 1 {
		return zer
	}
	if value < min && min > 0 {
		return min
	}
	if value > max && max > 0 {
		return max
	}
	return value
}

// GetStringArg reads the argument following name, aborting with a diagnostic
// if it is missing.
func GetStringArg(args []string, name string) string {
	if len(args) < 2 {
		Fatal("%s is missing", name)
	}
	return args[1]
}

// PrintDuration reports elapsed time and throughput since process start.
// Gated by the caller's -timer flag, not by -verbose.
func PrintDuration(name string, recordCount int) {
	seconds := time.Since(startTime).Seconds()

	prec := 3
	if seconds >= 100 {
		prec = 1
	} else if seconds >= 10 {
		prec = 2
	}

	if recordCount > 0 {
		fmt.Fprintf(os.Stderr, "\nProcessed %d %s in %.*f seconds", recordCount, name, prec, seconds)
	} else {
		fmt.Fprintf(os.Stderr, "\nProcessing completed in %.*f seconds", prec, seconds)
	}

	if seconds >= 0.001 && recordCount > 0 {
		rate := int(float64(recordCount) / seconds)
		fmt.Fprintf(os.Stderr, " (%d %s/second)", rate, name)
	}
	fmt.Fprintf(os.Stderr, "\n\n")
}

// PrintStats reports the tuning parameters and host memory, gated behind -stats.
func PrintStats(blockCount, dictTerms int, maxLines int) {
	fmt.Fprintf(os.Stderr, "Blks %d\n", blockCount)
	fmt.Fprintf(os.Stderr, "Dict %d\n", dictTerms)
	fmt.Fprintf(os.Stderr, "MaxL %d\n", maxLines)
	fmt.Fprintf(os.Stderr, "Mmry %d GB\n", memory.TotalMemory()/(1024*1024*1024))
	fmt.Fprintf(os.Stderr, "\n")
}
