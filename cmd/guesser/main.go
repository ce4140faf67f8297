// Command guesser infers admin views from the records of a data source. It
// prints the guessed snippet for one resource (guess) or serves guessed
// pages for every resource (serve).
package main

import (
	"os"
)

func main() {
	if err := newApp().rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
