package models

// AnalyticsReport aggregates platform counts over a time window.
type AnalyticsReport struct {
	Period     string                 `json:"period"`
	Users      AnalyticsUserCounts    `json:"users"`
	Posts      AnalyticsPostCounts    `json:"posts"`
	Comments   AnalyticsCommentCounts `json:"comments"`
	Engagement AnalyticsEngagement    `json:"engagement"`
}

type AnalyticsUserCounts struct {
	Total   int64 `json:"total"`
	New     int64 `json:"new"`
	Blocked int64 `json:"blocked"`
	Active  int64 `json:"active"`
}

type AnalyticsPostCounts struct {
	Total     int64 `json:"total"`
	New       int64 `json:"new"`
	Reported  int64 `json:"reported"`
	WithLikes int64 `json:"with_likes"`
}

type AnalyticsCommentCounts struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Reported int64 `json:"reported"`
}

type AnalyticsEngagement struct {
	TotalLikes          int64   `json:"total_likes"`
	AverageLikesPerPost float64 `json:"average_likes_per_post"`
}
