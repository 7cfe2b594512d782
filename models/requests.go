package models

type KeyResultInput struct {
	ID           string  `json:"id" validate:"omitempty,mongodb"`
	Title        string  `json:"title" validate:"required"`
	CurrentValue float64 `json:"current_value" validate:"min=0"`
	TargetValue  float64 `json:"target_value" validate:"min=0"`
}

type CreateObjectiveRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	StartDate   Date             `json:"start_date"`
	EndDate     Date             `json:"end_date"`
	Department  string           `json:"department" validate:"required,oneof=QA Frontend Backend PM HR Marketing Design DevOps Operations Network"`
	Category    string           `json:"category" validate:"required,oneof=Individual Team"`
	Owners      []string         `json:"owners" validate:"dive,mongodb"`
	KeyResults  []KeyResultInput `json:"key_results" validate:"dive"`
}

// UpdateObjectiveRequest is a partial update: nil fields are left unchanged.
// A non-nil empty KeyResults slice clears the key results.
type UpdateObjectiveRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	StartDate   *Date            `json:"start_date"`
	EndDate     *Date            `json:"end_date"`
	Department  *string          `json:"department" validate:"omitempty,oneof=QA Frontend Backend PM HR Marketing Design DevOps Operations Network"`
	Category    *string          `json:"category" validate:"omitempty,oneof=Individual Team"`
	Owners      []string         `json:"owners" validate:"omitempty,dive,mongodb"`
	KeyResults  []KeyResultInput `json:"key_results" validate:"omitempty,dive"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"required,oneof=Manager Employee"`
	Designation string `json:"designation" validate:"required,max=100"`
	Department  string `json:"department" validate:"required,oneof=QA Frontend Backend PM HR Marketing Design DevOps Operations Network"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest covers the self-service fields; role is changed only
// through the management surface.
type UpdateProfileRequest struct {
	Name        string `json:"name" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	Department  string `json:"department" validate:"omitempty,oneof=QA Frontend Backend PM HR Marketing Design DevOps Operations Network"`
	Designation string `json:"designation" validate:"omitempty,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=Admin Manager Employee"`
}

type RoleUpdate struct {
	UserID string `json:"user_id" validate:"required,mongodb"`
	Role   string `json:"role" validate:"required,oneof=Admin Manager Employee"`
}

type BulkRoleUpdateRequest struct {
	Updates []RoleUpdate `json:"updates" validate:"required,min=1,max=500,dive"`
}

type BulkDeleteRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=500,dive,mongodb"`
}
