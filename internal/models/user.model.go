package models

import (
	"gorm.io/datatypes"
)

type User struct {
	BaseUUIDModel
	// WechatOpenID is the stable subject id from the external login exchange.
	// Web-registered accounts carry a synthetic "web_<username>" value.
	WechatOpenID string          `gorm:"column:wechat_open_id;type:text;uniqueIndex;not null" json:"wechatOpenId"`
	Username     *string         `gorm:"type:text;uniqueIndex"                                json:"username"`
	Password     *string         `gorm:"type:text"                                            json:"-"`
	Name         *string         `gorm:"type:text"                                            json:"name"`
	Birthday     *datatypes.Date `gorm:"type:date"                                            json:"birthday"`

	Bracelets []Bracelet `gorm:"foreignKey:UserID" json:"-"`
}

// IsProfileComplete reports whether the account can use the full web flow:
// name, birthday, username and password must all be present.
func (u *User) IsProfileComplete() bool {
	return u.Name != nil && *u.Name != "" &&
		u.Birthday != nil &&
		u.Username != nil && *u.Username != "" &&
		u.Password != nil && *u.Password != ""
}

// UserPartial is the reduced user payload returned by login and profile
// endpoints. It never carries the credential secret.
type UserPartial struct {
	ID           string          `json:"id"`
	WechatOpenID string          `json:"wechatOpenId"`
	Username     *string         `json:"username"`
	Name         *string         `json:"name"`
	Birthday     *datatypes.Date `json:"birthday"`
}

func (u *User) ToPartial() UserPartial {
	return UserPartial{
		ID:           u.ID.String(),
		WechatOpenID: u.WechatOpenID,
		Username:     u.Username,
		Name:         u.Name,
		Birthday:     u.Birthday,
	}
}
