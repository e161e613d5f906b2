package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hireline/pkg/chat"
)

// errReplyFailed marks a chat reply that ended in the fallback message.
var errReplyFailed = errors.New("agent reply failed")

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the recruiting agent and stream its reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		deltas, err := services.Dashboard.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return MapError(err)
		}
		out := cmd.OutOrStdout()
		for delta := range deltas {
			_, _ = fmt.Fprint(out, delta)
		}
		_, _ = fmt.Fprintln(out)
		services.TrackChat()

		msgs := services.Dashboard.Chat.Transcript()
		if last := msgs[len(msgs)-1]; last.Role == chat.RoleAssistant && last.Failed {
			return NewCLIError("no answer from the agent", "Check chat_path and the backend logs", errReplyFailed)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(askCmd)
}
