package main

import "github.com/draftly/exportkit/cmd"

func main() {
	cmd.Execute()
}
