package handler

type completeProfileRequest struct {
	Role string `json:"role" validate:"required,oneof=admin partner employer client worker unassigned"`
}

// updateProfileRequest is a partial update; absent fields stay untouched.
type updateProfileRequest struct {
	Name      *string `json:"name"       validate:"omitempty"`
	FirstName *string `json:"first_name" validate:"omitempty"`
	LastName  *string `json:"last_name"  validate:"omitempty"`
	Phone     *string `json:"phone"      validate:"omitempty"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type createManagedRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	Name      string `json:"name"       validate:"required"`
	Role      string `json:"role"       validate:"omitempty,oneof=admin partner employer client worker"`
	Phone     string `json:"phone"      validate:"omitempty"`
	FirstName string `json:"first_name" validate:"omitempty"`
	LastName  string `json:"last_name"  validate:"omitempty"`
}
