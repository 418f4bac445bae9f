package main

import "github.com/opsight-dev/opsight/cmd"

func main() {
	cmd.Execute()
}
