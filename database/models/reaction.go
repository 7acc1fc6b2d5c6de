package models

import "time"

// ImageReaction 一行记录一个用户对一张图片的态度（喜欢或不喜欢，二选一）。
//
// 存储形态保持兼容约定：两个可空的用户外键列加三个复合唯一索引，
// 即 (image_id, user_id_like)、(image_id, user_id_dislike) 和
// (image_id, user_id_like, user_id_dislike)。同一 (image, user) 至多
// 持有 like 和 dislike 中的一个，由 rating 引擎在事务内保证。
type ImageReaction struct {
	ID      uint `gorm:"primaryKey;autoIncrement"`
	ImageID uint `gorm:"not null;uniqueIndex:uq_image_like,priority:1;uniqueIndex:uq_image_dislike,priority:1;uniqueIndex:uq_image_reaction,priority:1"`

	UserIDLike    *uint `gorm:"uniqueIndex:uq_image_like,priority:2;uniqueIndex:uq_image_reaction,priority:2"`
	UserIDDislike *uint `gorm:"uniqueIndex:uq_image_dislike,priority:2;uniqueIndex:uq_image_reaction,priority:3"`

	CreatedAt time.Time
}
