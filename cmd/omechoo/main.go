// Command omechoo is the terminal front end for menu recommendations, restaurant search and
// group voting rooms.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		var shown shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "! %s\n", err)
		}
		os.Exit(1)
	}
}
