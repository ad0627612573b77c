package recommendation

// Vote is the direction of a score change.
type Vote int

const (
	Upvote Vote = iota + 1
	Downvote
)

// RemovalThreshold is the lowest score a recommendation may keep.
// A downvote leaving the score strictly below it removes the entry.
const RemovalThreshold = -5

func (v Vote) String() string {
	switch v {
	case Upvote:
		return "upvote"
	case Downvote:
		return "downvote"
	default:
		return "unknown"
	}
}

// Delta is the score change applied by the vote.
func (v Vote) Delta() int {
	if v == Downvote {
		return -1
	}
	return 1
}

// Apply returns the score after the vote and whether the entry must be removed.
func Apply(v Vote, score int) (next int, remove bool) {
	next = score + v.Delta()
	return next, ShouldRemove(v, next)
}

// ShouldRemove reports whether a vote that produced score removes the entry.
// Upvotes never remove.
func ShouldRemove(v Vote, score int) bool {
	return v == Downvote && score < RemovalThreshold
}
