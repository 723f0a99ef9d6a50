// Package main 启动命令行客户端
package main

import (
	"fmt"
	"os"

	"github.com/yeisme/storeclient/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
