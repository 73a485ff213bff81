package models

type RedditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string     `json:"kind"`
			Data RedditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditPost is either a submission (t3) or a comment (t1); comments carry Body, posts Title/Selftext.
type RedditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	LinkID     string  `json:"link_id"`
}

type RedditAbout struct {
	Kind string          `json:"kind"`
	Data RedditAboutData `json:"data"`
}

type RedditAboutData struct {
	Name         string  `json:"name"`
	CreatedUTC   float64 `json:"created_utc"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	Verified     bool    `json:"verified"`
	IsGold       bool    `json:"is_gold"`
	IsSuspended  bool    `json:"is_suspended"`
}
