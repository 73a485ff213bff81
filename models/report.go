package models

// AnalysisReport is the JSON document returned for a successful analysis.
type AnalysisReport struct {
	Success           bool              `json:"success"`
	Username          string            `json:"username"`
	UserInfo          UserInfo          `json:"user_info"`
	ContentStats      ContentStats      `json:"content_stats"`
	SentimentAnalysis SentimentAnalysis `json:"sentiment_analysis"`
	TimelineData      []TimelineBucket  `json:"timeline_data"`
	TopKeywords       []KeywordEntry    `json:"top_keywords"`
	CharacterAnalysis CharacterProfile  `json:"character_analysis"`
}

type UserInfo struct {
	Username        string  `json:"username"`
	TotalKarma      int     `json:"total_karma"`
	PostKarma       int     `json:"post_karma"`
	CommentKarma    int     `json:"comment_karma"`
	AccountAgeDays  int     `json:"account_age_days"`
	AccountAgeYears float64 `json:"account_age_years"`
	AccountCreated  string  `json:"account_created"`
	IsVerified      bool    `json:"is_verified"`
	HasPremium      bool    `json:"has_premium"`
}

type ContentStats struct {
	TotalPosts    int             `json:"total_posts"`
	TotalComments int             `json:"total_comments"`
	TotalContent  int             `json:"total_content"`
	Languages     []LanguageCount `json:"languages"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type SentimentAnalysis struct {
	OverallPolarity     float64 `json:"overall_polarity"`
	OverallSubjectivity float64 `json:"overall_subjectivity"`
	PositiveRatio       float64 `json:"positive_ratio"`
	NeutralRatio        float64 `json:"neutral_ratio"`
	NegativeRatio       float64 `json:"negative_ratio"`
	TotalAnalyzed       int     `json:"total_analyzed"`
	SentimentSummary    string  `json:"sentiment_summary"`
}

type TimelineBucket struct {
	Date          string `json:"date"`
	Posts         int    `json:"posts"`
	Comments      int    `json:"comments"`
	TotalActivity int    `json:"total_activity"`
	TotalScore    int    `json:"total_score"`
}

type KeywordEntry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type CharacterProfile struct {
	PersonalityTraits  []string `json:"personality_traits"`
	ContentFocus       []string `json:"content_focus"`
	CommunicationStyle string   `json:"communication_style"`
	EngagementLevel    string   `json:"engagement_level"`
	SentimentSummary   string   `json:"sentiment_summary"`
}

// FailureResponse is the only body sent when an analysis fails; no report fields are present.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type AnalyzeRequest struct {
	Username string `json:"username"`
}
