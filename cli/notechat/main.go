package main

import (
	"os"

	notechatcmder "github.com/papercomputeco/notechat/cmd/notechat"
)

func main() {
	cmd := notechatcmder.NewNotechatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
