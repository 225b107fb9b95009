package main

import (
	"os"

	"github.com/TheZimbabwe/producto-transversal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
