package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"ListenTogether/model"

	"github.com/spf13/cobra"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "列出存储中的会话",
	Long:  `列出当前存储后端中的全部会话，用于调试。内存回退存储只在服务进程内可见，因此该命令一般配合 REDIS_URL 使用。`,
	Run: func(cmd *cobra.Command, args []string) {
		store, closeStore := newStore()
		defer closeStore()

		sessions := store.ListAll(cmd.Context())
		if !sessionsJSON {
			fmt.Printf("后端: %s, 会话数: %d\n", store.BackendName(), len(sessions))
		}
		if err := printSessions(os.Stdout, sessions, sessionsJSON); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// printSessions 输出会话列表，asJSON 为 true 时输出缩进的 JSON
func printSessions(w io.Writer, sessions []*model.Session, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sessions); err != nil {
			return fmt.Errorf("输出会话失败: %w", err)
		}
		return nil
	}

	for _, s := range sessions {
		track := "-"
		if s.CurrentTrack != nil {
			track = s.CurrentTrack.Title
		}
		_, err := fmt.Fprintf(w, "%s  host=%s  state=%s  track=%s  participants=%d  updated=%s\n",
			s.ID, s.HostName, s.State(), track, len(s.Participants),
			time.UnixMilli(s.UpdatedAt).Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("输出会话失败: %w", err)
		}
	}
	return nil
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "以JSON格式输出")
	rootCmd.AddCommand(sessionsCmd)
}
