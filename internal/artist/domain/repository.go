package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, artist *Artist) error
	Update(ctx context.Context, db *gorm.DB, artist *Artist) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Artist, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Artist, error)
	SlugExists(ctx context.Context, db *gorm.DB, userID snowflake.ID, slug string, excludeID snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListArtistFilter, page pagination.Pagination) ([]*Artist, error)
	CountCollaborations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
