package dto

type CreateContentRequest struct {
	ContentType     string `json:"content_type"`
	Title           string `json:"title"`
	Body            string `json:"body"`
	Excerpt         string `json:"excerpt"`
	MetaDescription string `json:"meta_description"`
	References      string `json:"references"`
}

// EditContentRequest carries only the fields being changed.
type EditContentRequest struct {
	Title           *string `json:"title"`
	Body            *string `json:"body"`
	Excerpt         *string `json:"excerpt"`
	MetaDescription *string `json:"meta_description"`
	References      *string `json:"references"`
	RequestReview   bool    `json:"request_review"`
}

type ReviewDecisionRequest struct {
	Feedback string `json:"feedback"`
}

type ProtectionRequest struct {
	Level string `json:"level"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}
