package dto

type CreatePostDto struct {
	Description *string `form:"description" binding:"omitempty,max=2200"`
}
