package models

// DateLayout is how post publication dates are stored, e.g. "June 05, 2024".
const DateLayout = "January 02, 2006"

type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	IsAdmin      bool   `json:"isAdmin" db:"is_admin"`
}

type Post struct {
	ID       int64  `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Subtitle string `json:"subtitle" db:"subtitle"`
	Date     string `json:"date" db:"date"`
	Body     string `json:"body" db:"body"`
	ImgURL   string `json:"imgUrl" db:"img_url"`
	AuthorID int64  `json:"authorId" db:"author_id"`

	// filled by joined queries only
	AuthorName string `json:"authorName,omitempty" db:"author_name"`
}

type Comment struct {
	ID       int64  `json:"id" db:"id"`
	Text     string `json:"text" db:"text"`
	AuthorID int64  `json:"authorId" db:"author_id"`
	PostID   int64  `json:"postId" db:"post_id"`

	AuthorName  string `json:"authorName,omitempty" db:"author_name"`
	AuthorEmail string `json:"-" db:"author_email"`
}

// PostDetail is a post together with its comments, oldest first.
type PostDetail struct {
	Post     *Post
	Comments []Comment
}
