package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"crateaudit/config"
	"crateaudit/server"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶检查",
	Long:  `连接MinIO，确保导出文件存储桶存在，并输出指定前缀下的统计信息。`,
	Example: `  # 全部导出文件
  crateaudit minio

  # 某个用户的导出文件
  crateaudit minio -p "exports/1/"`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := server.NewExportStore(cfg)
		if err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		stats, err := store.Stats(ctx, minioPrefix)
		if err != nil {
			log.Fatalf("获取存储桶统计信息失败: %v", err)
		}

		fmt.Printf("存储桶: %s\n", store.Bucket())
		fmt.Printf("对象数: %d\n", stats.TotalObjects)
		fmt.Printf("总大小: %.2f MB\n", float64(stats.TotalSize)/1024/1024)
		if !stats.LastModified.IsZero() {
			fmt.Printf("最后修改: %s\n", stats.LastModified.Format(time.RFC3339))
		}
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "exports/", "按前缀统计对象")
}
