package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"crateaudit/config"
	"crateaudit/core/analytics"
	"crateaudit/core/ingest"
	"crateaudit/core/library"
	"crateaudit/model"
	"crateaudit/server"

	"github.com/spf13/cobra"
)

var (
	analyzePlaylist string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <export.json>",
	Short: "离线分析一个导出文件",
	Long:  `读取分析器导出的 JSON，按歌单筛选后输出统计摘要，不需要数据库。`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		agg := server.NewAggregator(cfg)

		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("无法打开导出文件: %v", err)
		}
		defer f.Close()

		export, err := ingest.DecodeExport(f, agg)
		if err != nil {
			log.Fatalf("解析导出文件失败: %v", err)
		}

		baseline := export.Result
		playlists := analytics.BuildPlaylistIndex(baseline.Tracks)
		view := analytics.NewView(args[0], analyzePlaylist, playlists, agg.DeriveView(baseline, analyzePlaylist))
		if analyzePlaylist != analytics.AllPlaylists && len(view.Result.Tracks) == 0 {
			view.Suggestion = library.Suggest(analyzePlaylist, playlists)
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(view); err != nil {
				log.Fatalf("输出失败: %v", err)
			}
			return
		}
		printSummary(os.Stdout, view, export.Mismatches)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzePlaylist, "playlist", "p", analytics.AllPlaylists, "只统计该歌单中的曲目")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "以 JSON 输出完整视图")
}

func printSummary(out io.Writer, view analytics.View, mismatches []string) {
	stats := view.Result.Stats
	fmt.Fprintf(out, "Playlist:  %s\n", view.Selector)
	if view.Suggestion != "" {
		fmt.Fprintf(out, "           no such playlist, did you mean %q?\n", view.Suggestion)
	}
	fmt.Fprintf(out, "Tracks:    %d\n", stats.TotalTracks)
	fmt.Fprintf(out, "Gig ready: %d (%.1f%%)\n", stats.TotalGigReady, view.GigReadyPercent)
	fmt.Fprintf(out, "Flagged:   %d\n", len(view.Result.FlaggedTracks))
	fmt.Fprintf(out, "Playlists: %d\n\n", len(view.Playlists))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	printDistribution(tw, "FORMAT", stats.FormatDistribution)
	printDistribution(tw, "ISSUE", stats.IssueDistribution)
	printDistribution(tw, "BPM", stats.BPMDistribution)
	printDistribution(tw, "KEY", stats.KeyDistribution)
	printDistribution(tw, "GENRE", stats.GenreDistribution)
	tw.Flush()

	for _, m := range mismatches {
		fmt.Fprintf(out, "warning: analyzer stats differ: %s\n", m)
	}
}

func printDistribution(tw *tabwriter.Writer, title string, d model.Distribution) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(tw, "%s\tCOUNT\n", title)
	for _, k := range keys {
		label := k
		if analytics.IsPlaceholder(k) {
			label = "(none)"
			if k != "" {
				label = fmt.Sprintf("(none: %q)", k)
			}
		}
		fmt.Fprintf(tw, "%s\t%d\n", label, d[k])
	}
	fmt.Fprintln(tw, "\t")
}
