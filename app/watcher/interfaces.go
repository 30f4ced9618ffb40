package watcher

import (
	"context"

	"biliwatch/app/bili"
)

// FeedClient is the upstream feed surface the watcher drives. All calls are
// synchronous, rate-limited by the implementation, and return structured
// errors rather than partial data.
type FeedClient interface {
	ProbeUpdate(ctx context.Context, baseline string) (*bili.UpdateProbe, error)
	FetchAllDynamics(ctx context.Context) (*bili.DynamicPage, error)
	FetchUserDynamics(ctx context.Context, uid string) ([]bili.Dynamic, error)
	FetchLatestVideo(ctx context.Context, uid string) (*bili.Video, error)
}

var _ FeedClient = (*bili.Client)(nil)

// Notifier delivers one item to the outbound channel. Called at most once per
// item per cycle; retries happen only through the next cycle's dedup miss.
type Notifier interface {
	Deliver(ctx context.Context, item bili.Item) error
}
