package dto

type CreateCommunityDto struct {
	Name             string `json:"name" binding:"required,min=2,max=80"`
	Description      string `json:"description" binding:"max=500"`
	RequiresApproval bool   `json:"requires_approval"`
}

type EditCommunityDto struct {
	Name             *string `json:"name" binding:"omitempty,min=2,max=80"`
	Description      *string `json:"description" binding:"omitempty,max=500"`
	RequiresApproval *bool   `json:"requires_approval"`
}

type CreateInviteDto struct {
	TTLHours int `json:"ttl_hours" binding:"min=0,max=720"`
}

type UpsertProfileDto struct {
	Name      string `json:"name" binding:"max=80"`
	Handle    string `json:"handle" binding:"required,min=2,max=30"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}
