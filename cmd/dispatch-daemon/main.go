package main

import (
	"github.com/kaitori/dispatch-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
