// Command er_sigcheck checks the hook signatures against a game executable
// on disk and validates a translation file before it is shipped.
package main

import (
	"fmt"
	"os"

	"eternalredirect/lifecycle"
	"eternalredirect/process"
	"eternalredirect/scanner"
	"eternalredirect/translation"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		exePath      string
		translations string
		aobText      string
		context      int
		noColor      bool
		showHelp     bool
	)

	pflag.StringVarP(&exePath, "exe", "e", "", "Path to the game executable")
	pflag.StringVarP(&translations, "translations", "t", "", "Translation file to validate")
	pflag.StringVarP(&aobText, "aob", "a", "", "Extra pattern to scan for (e.g. '48 89 ?? 24')")
	pflag.IntVarP(&context, "context", "c", 16, "Bytes of context to dump around each match (0 to disable)")
	pflag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help message")
	pflag.Parse()

	if showHelp || (exePath == "" && translations == "") {
		fmt.Fprintln(os.Stderr, "Usage: er_sigcheck [--exe game.exe] [--translations tr.json]")
		pflag.PrintDefaults()
		if showHelp {
			return 0
		}
		return 1
	}

	failed := false

	if exePath != "" {
		signatures := []signature{
			{lifecycle.DrawHook, lifecycle.DrawSignature},
			{lifecycle.CopyHook, lifecycle.CopySignature},
			{lifecycle.MeasureHook, lifecycle.MeasureSignature},
		}

		if aobText != "" {
			aob, err := process.ParseAOB(aobText)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing AOB: %v\n", err)
				return 1
			}
			signatures = append(signatures, signature{"custom", aob})
		}

		img, err := loadExecutable(exePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading executable: %v\n", err)
			return 1
		}

		sc := scanner.New(img)
		fmt.Printf("Image %s, scanning %s - %s\n", exePath, img.Base().ToString(), sc.Bound().ToString())

		matches := checkSignatures(sc, signatures)
		writeMatches(os.Stdout, img, sc.Bound(), matches, context, !noColor)

		for _, m := range matches[:3] {
			if !m.usable() {
				failed = true
			}
		}
	}

	if translations != "" {
		store, err := translation.Load(translations)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading translations: %v\n", err)
			return 1
		}

		fmt.Printf("%d translations, %d skipped\n", store.Len(), store.Skipped())
		mismatches := checkTranslations(store)
		writeMismatches(os.Stdout, mismatches)
		if store.Skipped() > 0 {
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}
