package main

import (
	"soundstage/cmd"
)

func main() {
	cmd.Execute()
}
