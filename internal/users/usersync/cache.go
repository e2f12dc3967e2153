// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package usersync keeps one signed-in session's view of its user profile in
step with the remote document store.

Components:

  - LocalCache: the last known profile snapshot of the session slot, used to
    restore state before the remote store answers.
  - Coordinator: fetch-on-login, fetch-on-resume, push-on-mutation and cache
    fallback, with an in-flight guard against duplicate fetches.

Remote writes always send a whole history array rather than a delta, so two
processes writing the same user concurrently end last-write-wins per field.
Within one session the coordinator serializes its own writes.
*/
package usersync

import (
	"context"

	"github.com/taibuivan/arcana/internal/users/profile"
)

// LocalCache is the per-session snapshot store.
//
// Load treats an unreadable snapshot like an absent one: it logs and returns
// nil, nil. Errors are reserved for transport failures.
type LocalCache interface {
	Save(ctx context.Context, p profile.UserProfile) error
	Load(ctx context.Context) (*profile.UserProfile, error)
	LoadUsername(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
