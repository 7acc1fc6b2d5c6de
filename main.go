package main

import (
	"log"

	"github.com/merkulive/photoshare/cmd"
	"github.com/merkulive/photoshare/config"
)

func main() {
	log.Printf("photoshare %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
