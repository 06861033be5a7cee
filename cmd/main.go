// Package main is the entry point of gospectrum, an audio spectrum overlay
// for OBS and other capture software.
//
// Build:
//
//	go build -o build/gospectrum ./cmd
//
// Run:
//
//	./build/gospectrum                  # overlay window
//	./build/gospectrum preview          # terminal preview
//	./build/gospectrum snapshot -o a.png
package main

func main() {
	Execute()
}
