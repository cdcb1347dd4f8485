package main

import "github.com/nijaru/yt-summary/cli"

func main() {
	cli.Main()
}
