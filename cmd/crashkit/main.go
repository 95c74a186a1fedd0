package main

import (
	"github.com/crashkit/crashkit/cmd/crashkit/cli"
)

func main() {
	cli.InitAndExecute()
}
