package main

import (
	"flag"

	"github.com/ortpack/ortpack/cmd/ortpack/internal"
)

func main() {
	// glog wants its flags parsed; cobra owns the real command line.
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse(nil)
	internal.Execute()
}
