package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// gateCmd represents the gate command
var gateCmd = &cobra.Command{
	Use:   "gate <health_score.json>",
	Short: "Health score gate for CI workflows",
	Long: `헬스 점수로 워크플로우 성패를 판정합니다.

게이트 밴드:
- 85 이상: 정상 성공
- 70-84:   경고 성공
- 50-69:   경고 성공 (HOLD 바이어스 적용 상태)
- 50 미만: 실패 (non-zero exit)

Example:
  go run ./cmd/vigil gate artifacts/health_score.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGate,
}

func init() {
	rootCmd.AddCommand(gateCmd)
}

func runGate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read health score: %w", err)
	}

	var payload struct {
		HealthScore int `json:"health_score"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse health score %s: %w", args[0], err)
	}

	score := payload.HealthScore
	switch {
	case score >= 85:
		fmt.Printf("Health score %d: normal success.\n", score)
		return nil
	case score >= 70:
		fmt.Printf("::warning::Health score %d: success with warning.\n", score)
		return nil
	case score >= 50:
		fmt.Printf("::warning::Health score %d: success with warning; HOLD bias should already be applied.\n", score)
		return nil
	default:
		fmt.Printf("::error::Health score %d: below 50, failing workflow.\n", score)
		// Silence cobra's usage output; the gate message is the diagnosis.
		cmd.SilenceUsage = true
		return fmt.Errorf("health score %d below 50", score)
	}
}
