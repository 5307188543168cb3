/*
Kelp runs kelp scripts, either a single file given on the command line or
an interactive read-eval-print loop reading from stdin.

Usage:

	kelp [flags] [file]

The flags are:

	-v, --version
	    Give the current version of kelp and then exit.

	-d, --direct
	    Force reading directly from stdin as opposed to using GNU readline
	    based routines for reading REPL input, even when launched in a tty.

	-c, --cache
	    When running a file, cache its parsed Program to a sibling
	    "<file>.kelpc" file and reuse it on subsequent runs as long as the
	    source file's modification time has not changed.

In file mode, kelp parses and evaluates the named file with a fresh
Runtime and prints nothing but whatever the script itself prints via
native functions; the final expression's value is discarded. In REPL
mode, kelp reads a line, parses it as a program, evaluates it against a
Runtime kept alive for the life of the process, and prints the final
value using the print formatter.

Exit code 0 indicates success; 1 indicates a parse failure, printed to
stderr as a diagnostic.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dekarrin/kelp/internal/input"
	"github.com/dekarrin/kelp/internal/lang"
	"github.com/dekarrin/kelp/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitParseError indicates an unsuccessful execution due to a parse
	// failure.
	ExitParseError

	// ExitInitError indicates an unsuccessful execution due to an issue
	// initializing input.
	ExitInitError
)

var (
	returnCode  int   = ExitSuccess
	flagVersion *bool = pflag.BoolP("version", "v", false, "Gives the version info")
	forceDirect *bool = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	useCache    *bool = pflag.BoolP("cache", "c", false, "Cache the parsed Program of a run file alongside it and reuse it while the source is unmodified")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) > 0 {
		runFile(args[0])
		return
	}

	runREPL()
}

func runFile(path string) {
	prog, err := loadProgram(path, *useCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitParseError
		return
	}

	rt := lang.NewRuntime()
	rt.RegisterDefaults()
	rt.Run(prog)
}

// loadProgram parses the file at path, consulting and maintaining a
// "<path>.kelpc" rezi cache when useCache is true and the cache's
// recorded source mtime matches the file's current mtime.
func loadProgram(path string, useCache bool) (lang.Program, error) {
	info, err := os.Stat(path)
	if err != nil {
		return lang.Program{}, fmt.Errorf("stat %s: %w", path, err)
	}

	cachePath := path + ".kelpc"

	if useCache {
		if prog, ok := tryLoadCache(cachePath, info.ModTime()); ok {
			return prog, nil
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return lang.Program{}, fmt.Errorf("read %s: %w", path, err)
	}

	prog, err := lang.Parse(string(src))
	if err != nil {
		return lang.Program{}, err
	}

	if useCache {
		saveCache(cachePath, prog, info.ModTime())
	}

	return prog, nil
}

// cacheEnvelope is the on-disk shape of a ".kelpc" cache file: an 8-byte
// big-endian mtime (unix nanoseconds) followed by the rezi-encoded
// Program.
func tryLoadCache(cachePath string, mtime time.Time) (lang.Program, bool) {
	data, err := os.ReadFile(cachePath)
	if err != nil || len(data) < 8 {
		return lang.Program{}, false
	}

	stamp := decodeStamp(data[:8])
	if !stamp.Equal(mtime) {
		return lang.Program{}, false
	}

	var prog lang.Program
	if err := prog.UnmarshalBinary(data[8:]); err != nil {
		return lang.Program{}, false
	}

	return prog, true
}

func saveCache(cachePath string, prog lang.Program, mtime time.Time) {
	data, err := prog.MarshalBinary()
	if err != nil {
		return
	}

	out := append(encodeStamp(mtime), data...)
	_ = os.WriteFile(cachePath, out, 0664)
}

func encodeStamp(t time.Time) []byte {
	ns := t.UnixNano()
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(ns)
		ns >>= 8
	}
	return b
}

func decodeStamp(b []byte) time.Time {
	var ns int64
	for i := 0; i < 8; i++ {
		ns = (ns << 8) | int64(b[i])
	}
	return time.Unix(0, ns)
}

func runREPL() {
	reader, err := newLineReader(*forceDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer reader.Close()

	rt := lang.NewRuntime()
	rt.RegisterDefaults()

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}

		prog, err := lang.Parse(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}

		result := rt.Run(prog)
		fmt.Println(lang.FormatPrint(result))
	}
}

// lineReader is satisfied by both input.DirectLineReader and
// input.InteractiveLineReader.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

func newLineReader(forceDirect bool) (lineReader, error) {
	if !forceDirect && isInteractive() {
		return input.NewInteractiveReader("kelp> ")
	}
	return input.NewDirectReader(os.Stdin), nil
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
