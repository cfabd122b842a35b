package main

import (
	"os"

	"github.com/bulwark-sec/bulwark/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
