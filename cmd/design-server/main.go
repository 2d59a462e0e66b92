package main

import (
	"github.com/menta2k/design-analyzer/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
