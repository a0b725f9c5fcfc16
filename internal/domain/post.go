package domain

import "time"

// Post types.
const (
	PostTypeDonation    = "donation"
	PostTypeHelpRequest = "help_request"
)

// Post categories. The mobile app ships these four.
var PostCategories = []string{"alimentos", "roupas", "medicamentos", "brinquedos"}

type Post struct {
	PostID      string    `json:"id" dynamodbav:"post_id"`
	AuthorID    string    `json:"authorId" dynamodbav:"author_id"`
	PostType    string    `json:"postType" dynamodbav:"post_type"` // "donation" | "help_request"
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Category    string    `json:"category" dynamodbav:"category"`
	Tags        []string  `json:"tags,omitempty" dynamodbav:"tags"`
	Images      []string  `json:"images,omitempty" dynamodbav:"images"`
	Location    *Location `json:"location,omitempty" dynamodbav:"location"`
	LikesCount  int       `json:"likesCount" dynamodbav:"likes_count"`
	IsActive    bool      `json:"isActive" dynamodbav:"is_active"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`

	// Filled per-viewer when listing; never persisted.
	Author  *PostAuthor `json:"author,omitempty" dynamodbav:"-"`
	IsLiked bool        `json:"isLiked" dynamodbav:"-"`
}

// PostAuthor is the public slice of a User embedded in feed responses.
type PostAuthor struct {
	UserID       string  `json:"id"`
	Name         string  `json:"name"`
	UserType     string  `json:"userType"`
	Phone        *string `json:"phone,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	IsVerified   bool    `json:"isVerified"`
}

type CreatePostRequest struct {
	PostType    string    `json:"postType" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"` // base64 payloads, uploaded to object storage
	Location    *Location `json:"location"`
}

// PostFilter narrows feed queries. Zero values mean "no filter".
type PostFilter struct {
	Query    string
	PostType string
	Category string
}

// Like records one user liking one post. PK: post_id, SK: user_id.
type Like struct {
	PostID    string    `json:"postId" dynamodbav:"post_id"`
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}
