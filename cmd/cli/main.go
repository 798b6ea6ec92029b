package main

import (
	"os"

	"github.com/you-kimono/checkilists/internal/admin"
)

func main() {
	if err := admin.Execute(); err != nil {
		os.Exit(1)
	}
}
