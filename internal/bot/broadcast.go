package bot

import (
	"context"
	"fmt"
)

// Broadcast sends the reminder prompt to every user that has ever submitted a
// score. Per-recipient delivery failures (blocked bot, deleted account) are
// routine: they are logged and counted but never abort the remaining sends.
// The returned error is non-nil only when the user list itself cannot be read.
func (b *Bot) Broadcast(ctx context.Context) (sent, failed int, err error) {
	ids, err := b.store.DistinctUserIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}

	for _, id := range ids {
		if err := b.tg.SendMessage(ctx, id, reminderText); err != nil {
			failed++
			b.log.Error().Err(err).Int64("user_id", id).Msg("reminder delivery failed")
			continue
		}
		sent++
	}

	b.log.Info().Int("sent", sent).Int("failed", failed).Msg("reminder broadcast finished")
	return sent, failed, nil
}
