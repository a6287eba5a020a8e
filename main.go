package main

import (
	"ListenTogether/cmd"
)

func main() {
	cmd.Execute()
}
