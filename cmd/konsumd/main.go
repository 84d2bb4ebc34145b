package main

import (
	"github.com/konsumhq/konsum/cmd/konsumd/cli"
)

func main() {
	cli.InitAndExecute()
}
