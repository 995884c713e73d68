package main

import "github.com/oshokin/mitm-detector/cmd/mitm-status/cmd"

func main() {
	cmd.Execute()
}
