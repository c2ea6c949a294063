package session

// Queue is a Playlist over a fixed list of targets, played in order.
type Queue struct {
	targets []string
}

func NewQueue(targets ...string) *Queue {
	return &Queue{targets: targets}
}

func (q *Queue) Next() (string, bool) {
	if len(q.targets) == 0 {
		return "", false
	}

	next := q.targets[0]
	q.targets = q.targets[1:]
	return next, true
}
