package models

import (
	"time"

	"github.com/kova98/userlens.api/enums"
)

// ContentItem is a post or comment authored by the analysed user.
type ContentItem struct {
	ID        string
	Kind      enums.ItemKind
	Text      string
	Subreddit string
	Score     int
	CreatedAt time.Time
}

type UserProfile struct {
	Username     string
	CreatedAt    time.Time
	PostKarma    int
	CommentKarma int
	IsVerified   bool
	HasPremium   bool
	IsSuspended  bool
}

func (p UserProfile) TotalKarma() int {
	return p.PostKarma + p.CommentKarma
}

// SplitByKind returns posts and comments preserving input order.
func SplitByKind(items []ContentItem) (posts, comments []ContentItem) {
	for _, item := range items {
		if item.Kind == enums.ItemKindPost {
			posts = append(posts, item)
		} else {
			comments = append(comments, item)
		}
	}
	return posts, comments
}
