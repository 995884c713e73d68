package main

import "github.com/oshokin/mitm-detector/cmd/mitm-detector/cmd"

func main() {
	cmd.Execute()
}
