package models

import "time"

// MaxTagsPerImage 单张图片最多可附加的标签数
const MaxTagsPerImage = 5

type Image struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	URL         string  `gorm:"size:255;not null" json:"url"`
	Description string  `gorm:"size:255" json:"description"`
	Rate        float64 `gorm:"default:0;not null" json:"rate"`
	URLView     *string `gorm:"size:255" json:"url_view,omitempty"`
	QRCodeView  *string `gorm:"size:255" json:"qr_code_view,omitempty"`

	// StorageKey 仅当文件由本服务托管时设置（上传接口）
	StorageKey *string `gorm:"size:255" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Tags     []*Tag    `gorm:"many2many:image_tags;" json:"tags"`
	Comments []Comment `gorm:"foreignKey:ImageID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
