package main

import "github.com/KaramelBytes/resortgen/cmd"

func main() {
	cmd.Execute()
}
