package main

import "github.com/jmedhanie/protosh/cmd"

func main() {
	cmd.Execute()
}
