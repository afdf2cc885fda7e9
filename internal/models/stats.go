package models

// ResourceCounts aggregates row counts for the admin dashboard.
type ResourceCounts struct {
	Projects       int `db:"projects" json:"projects"`
	Services       int `db:"services" json:"services"`
	BlogPosts      int `db:"blog_posts" json:"blogPosts"`
	Messages       int `db:"messages" json:"messages"`
	UnreadMessages int `db:"unread_messages" json:"unreadMessages"`
	MediaFiles     int `db:"media_files" json:"mediaFiles"`
	Users          int `db:"users" json:"users"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	Counts         ResourceCounts   `json:"counts"`
	RecentMessages []ContactMessage `json:"recentMessages"`
	LatestPosts    []BlogPost       `json:"latestPosts"`
}
