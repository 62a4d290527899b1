package main

import (
	"os"

	"github.com/ridge/strata/server"
)

func main() {
	server.Main(os.Args)
}
