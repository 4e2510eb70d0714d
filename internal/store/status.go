package store

// RollupVideoStatus derives an item's overall video status from its
// scene media statuses: completed only when every scene completed,
// failed when any scene failed and not all completed, in progress
// otherwise. An item with no scenes has not started.
func RollupVideoStatus(statuses []MediaStatus) ItemVideoStatus {
	if len(statuses) == 0 {
		return VideoNotStarted
	}

	completed := 0
	failed := 0
	started := 0
	for _, s := range statuses {
		switch s {
		case MediaCompleted:
			completed++
			started++
		case MediaFailed:
			failed++
			started++
		case MediaGenerating:
			started++
		}
	}

	switch {
	case completed == len(statuses):
		return VideoCompleted
	case failed > 0:
		return VideoFailed
	case started == 0:
		return VideoNotStarted
	default:
		return VideoInProgress
	}
}
