package dispatch

import (
	"context"
	"sort"

	"github.com/katatrina/eduhub-BE/internal/directory"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/rs/zerolog/log"
)

// Resolver expands a notification's addressing block into a deduplicated
// set of recipient user ids.
type Resolver struct {
	directory directory.Directory
}

func NewResolver(dir directory.Directory) *Resolver {
	return &Resolver{
		directory: dir,
	}
}

// Resolve unions explicit user ids with directory-resolved role members,
// group members and (when the broadcast flag is set) all active users. A
// failed directory lookup contributes zero members instead of aborting the
// job: availability over completeness, the directory is an external
// collaborator.
func (r *Resolver) Resolve(ctx context.Context, recipients notification.Recipients) []string {
	seen := make(map[string]bool)

	add := func(userIDs []string) {
		for _, id := range userIDs {
			if id != "" {
				seen[id] = true
			}
		}
	}

	add(recipients.UserIDs)

	for _, role := range recipients.Roles {
		userIDs, err := r.directory.UsersByRole(ctx, role)
		if err != nil {
			log.Warn().Err(err).Str("role", role).Msg("failed to resolve role members, skipping")
			continue
		}
		add(userIDs)
	}

	for _, group := range recipients.Groups {
		userIDs, err := r.directory.UsersByGroup(ctx, group)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("failed to resolve group members, skipping")
			continue
		}
		add(userIDs)
	}

	if recipients.Broadcast {
		userIDs, err := r.directory.AllActiveUsers(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to resolve broadcast recipients, skipping")
		} else {
			add(userIDs)
		}
	}

	resolved := make([]string, 0, len(seen))
	for id := range seen {
		resolved = append(resolved, id)
	}
	sort.Strings(resolved)
	return resolved
}
