package main

import "github.com/j4rviscmd/bilibili-downloader-gui-sub000/cmd"

func main() {
	cmd.Execute()
}
