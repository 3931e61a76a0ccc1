package dto

type CreateCommentDto struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}
