package main

import (
	"log"

	"github.com/aisca/aisca/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
