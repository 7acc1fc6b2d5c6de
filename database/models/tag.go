package models

// MaxTagNameLength 标签名最大长度
const MaxTagNameLength = 25

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;size:25;not null" json:"name"`
}
