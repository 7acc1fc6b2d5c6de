package images

import (
	"github.com/merkulive/photoshare/database/models"
	"gorm.io/gorm"
)

// 反应行查询。这些函数直接接收 *gorm.DB，rating 引擎在同一个
// 事务里组合调用它们，保证反应变更和 rate 重算原子落盘。

// HasLike 用户是否已喜欢该图片
func HasLike(db *gorm.DB, imageID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.ImageReaction{}).
		Where("image_id = ? AND user_id_like = ?", imageID, userID).
		Count(&count).Error
	return count > 0, err
}

// HasDislike 用户是否已不喜欢该图片
func HasDislike(db *gorm.DB, imageID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.ImageReaction{}).
		Where("image_id = ? AND user_id_dislike = ?", imageID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddLike 插入一条喜欢行
func AddLike(db *gorm.DB, imageID, userID uint) error {
	return db.Create(&models.ImageReaction{
		ImageID:    imageID,
		UserIDLike: &userID,
	}).Error
}

// AddDislike 插入一条不喜欢行
func AddDislike(db *gorm.DB, imageID, userID uint) error {
	return db.Create(&models.ImageReaction{
		ImageID:       imageID,
		UserIDDislike: &userID,
	}).Error
}

// RemoveLike 删除喜欢行（不存在时为空操作）
func RemoveLike(db *gorm.DB, imageID, userID uint) error {
	return db.Where("image_id = ? AND user_id_like = ?", imageID, userID).
		Delete(&models.ImageReaction{}).Error
}

// RemoveDislike 删除不喜欢行（不存在时为空操作）
func RemoveDislike(db *gorm.DB, imageID, userID uint) error {
	return db.Where("image_id = ? AND user_id_dislike = ?", imageID, userID).
		Delete(&models.ImageReaction{}).Error
}

// CountReactions 返回图片当前的喜欢/不喜欢数量
func CountReactions(db *gorm.DB, imageID uint) (likes int64, dislikes int64, err error) {
	err = db.Model(&models.ImageReaction{}).
		Where("image_id = ? AND user_id_like IS NOT NULL", imageID).
		Count(&likes).Error
	if err != nil {
		return 0, 0, err
	}
	err = db.Model(&models.ImageReaction{}).
		Where("image_id = ? AND user_id_dislike IS NOT NULL", imageID).
		Count(&dislikes).Error
	return likes, dislikes, err
}

// Likers 返回喜欢该图片的用户ID集合
func Likers(db *gorm.DB, imageID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.ImageReaction{}).
		Where("image_id = ? AND user_id_like IS NOT NULL", imageID).
		Pluck("user_id_like", &ids).Error
	return ids, err
}

// Dislikers 返回不喜欢该图片的用户ID集合
func Dislikers(db *gorm.DB, imageID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.ImageReaction{}).
		Where("image_id = ? AND user_id_dislike IS NOT NULL", imageID).
		Pluck("user_id_dislike", &ids).Error
	return ids, err
}
