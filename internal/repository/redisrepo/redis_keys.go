package redisrepo

import "fmt"

const (
	COMMUNITY_POSTS_KEY     = "community:%d-posts:%d:%d" // <communityID>:<start>:<end>
	COMMUNITY_POSTS_PATTERN = "community:%d-posts:*"     // <communityID>
	PROFILE_KEY             = "profile:%s"               // <userID>
	COMMUNITY_KEY           = "community:%d"             // <communityID>
)

func CommunityPostsKey(communityID int64, start int, end int) string {
	return fmt.Sprintf(COMMUNITY_POSTS_KEY, communityID, start, end)
}

func CommunityPostsPattern(communityID int64) string {
	return fmt.Sprintf(COMMUNITY_POSTS_PATTERN, communityID)
}

func ProfileKey(userID string) string {
	return fmt.Sprintf(PROFILE_KEY, userID)
}

func CommunityKey(communityID int64) string {
	return fmt.Sprintf(COMMUNITY_KEY, communityID)
}
