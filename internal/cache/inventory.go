package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostSlugKeyPrefix = "post:slug:%s"
	UserKeyPrefix     = "user:%d"
	CategoriesKey     = "taxonomy:categories"
	TagsKey           = "taxonomy:tags"
	AdminStatsKey     = "admin:stats"
)

const (
	PostTTL       = 5 * time.Minute
	UserTTL       = 5 * time.Minute
	TaxonomyTTL   = 10 * time.Minute
	AdminStatsTTL = 30 * time.Second
)

func PostSlugKey(slug string) string {
	return fmt.Sprintf(PostSlugKeyPrefix, slug)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostSlugKey(slug), AdminStatsKey)
}

// InvalidatePosts drops cached post bodies, which embed their author.
func InvalidatePosts(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, PostSlugKey(slug))
	}
	Invalidate(ctx, keys...)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateTaxonomy(ctx context.Context) {
	Invalidate(ctx, CategoriesKey, TagsKey)
}
