package main

import "github.com/endorses/dashsync/cmd"

func main() {
	cmd.Execute()
}
