package main

import "github.com/frida-dev/frida-go/cmd"

func main() {
	cmd.Execute()
}
