package main

import "github.com/theirongolddev/burnline/cmd"

func main() {
	cmd.Execute()
}
