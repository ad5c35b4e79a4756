package main

import (
	"github.com/jcallaghan/sessionlink/internal/cli"
)

func main() {
	cli.Execute()
}
