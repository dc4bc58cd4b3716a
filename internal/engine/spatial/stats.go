package spatial

import "github.com/rendis/pinmap/internal/model"

// PopularLikes is the like count at which a post counts as popular.
const PopularLikes = 3

// BuildStats folds a post list into per-place aggregates.
func BuildStats(posts []model.Post) map[string]model.PlaceStats {
	stats := make(map[string]model.PlaceStats)
	thumbAt := make(map[string]int) // index of the post that supplied the thumbnail

	for i, post := range posts {
		s := stats[post.PlaceID]
		s.PostCount++
		s.TotalLikes += post.Likes
		if post.Likes >= PopularLikes {
			s.HasPopularPost = true
		}
		if post.CreatedAt.After(s.LatestPostAt) {
			s.LatestPostAt = post.CreatedAt
		}
		if post.Thumbnail != "" {
			prev, seen := thumbAt[post.PlaceID]
			if !seen || post.CreatedAt.After(posts[prev].CreatedAt) {
				s.Thumbnail = post.Thumbnail
				thumbAt[post.PlaceID] = i
			}
		}
		stats[post.PlaceID] = s
	}
	return stats
}
