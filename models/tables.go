package models

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Name         string `gorm:"not null" json:"name"`
	Role         string `gorm:"not null;default:'member'" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Post struct {
	ID       int    `gorm:"primary_key;autoIncrement" json:"id"`
	AuthorID int    `gorm:"not null;index" json:"author_id"` // auto-filled from the session principal
	Title    string `gorm:"unique;not null" json:"title"`
	Subtitle string `gorm:"not null" json:"subtitle"`
	Date     string `gorm:"not null" json:"date"` // display string, e.g. "January 02, 2006"
	Body     string `gorm:"type:text;not null" json:"body"`
	ImgURL   string `gorm:"not null" json:"img_url"`
}

type Comment struct {
	ID       int    `gorm:"primary_key;autoIncrement" json:"id"`
	WriterID int    `gorm:"not null;index" json:"writer_id"`
	PostID   int    `gorm:"not null;index" json:"post_id"`
	Body     string `gorm:"type:text;not null" json:"body"`
	Date     string `json:"date"`
}
