package main

import (
	"fmt"
	"os"

	relaycmder "github.com/papercomputeco/notechat/cmd/notechat/relay"
)

func main() {
	cmd := relaycmder.NewRelayCmd()

	cmd.Use = "notechatrelay"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .notechat/ config directory")

	err := cmd.Execute()
	if err != nil {
		fmt.Printf("Error executing root command: %v\n", err)
		os.Exit(1)
	}
}
