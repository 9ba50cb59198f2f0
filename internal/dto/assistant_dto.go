package dto

// AssistantMessage is one turn of the conversation sent by the client.
type AssistantMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AssistantChatRequest is the payload accepted by the course assistant.
type AssistantChatRequest struct {
	Messages      []AssistantMessage `json:"messages" validate:"required,min=1,dive"`
	CourseContext string             `json:"courseContext" validate:"max=20000"`
	Action        string             `json:"action" validate:"omitempty,oneof=none quiz explain"`
	FileName      string             `json:"fileName" validate:"max=255"`
	FileURL       string             `json:"fileUrl" validate:"omitempty,url"`
}
