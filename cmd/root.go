package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crateaudit",
	Short: "crateaudit audits DJ library exports and flags problem tracks.",
	Long: `crateaudit 读取外部分析器生成的曲库分析结果，
按歌单重新计算统计信息，并通过 HTTP / WebSocket 提供看板数据。`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
