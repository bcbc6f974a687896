package cmd

import (
	"crateaudit/config"
	"crateaudit/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 crateaudit 服务器",
	Long:  `启动 HTTP 服务器，提供曲库上传、歌单分析、看板 WebSocket 与 /metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(config.Load())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
