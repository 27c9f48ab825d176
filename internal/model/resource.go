package model

// Resource is a reading resource published by mentors.
// swagger:model Resource
type Resource struct {
	ID          int    `json:"id" validate:"required"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	CreatedBy   int    `json:"created_by"`
	CreatorName string `json:"creator_name,omitempty"`
	CreatedAt   Time   `json:"created_at"`
	UpdatedAt   Time   `json:"updated_at"`
	IsActive    bool   `json:"is_active"`
}

const DefaultResourceCategory = "General"

type CreateResourceRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
