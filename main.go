package main

import (
	"os"

	"github.com/procureflow/procureflow/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
